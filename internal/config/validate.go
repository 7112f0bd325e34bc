package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost must be in [4, 31] (got %d)", c.Auth.BcryptCost)
	}

	if c.Storage.MaxSizeBytes <= 0 {
		return fmt.Errorf("storage.max_size_bytes must be > 0 (got %d)", c.Storage.MaxSizeBytes)
	}

	if c.Review.SearchDebounce < 0 {
		return fmt.Errorf("review.search_debounce must be >= 0 (got %v)", c.Review.SearchDebounce)
	}
	if c.Review.PageLimit <= 0 {
		return fmt.Errorf("review.page_limit must be > 0 (got %d)", c.Review.PageLimit)
	}
	if c.Review.MaxPageLimit < c.Review.PageLimit {
		return fmt.Errorf("review.max_page_limit must be >= page_limit (got %d < %d)",
			c.Review.MaxPageLimit, c.Review.PageLimit)
	}

	if c.Cases.HardDeleteRetentionDays <= 0 {
		return fmt.Errorf("cases.hard_delete_retention_days must be > 0 (got %d)", c.Cases.HardDeleteRetentionDays)
	}

	return nil
}
