package http

import (
	"sync"

	"brushline/internal/core/bucket"
	"brushline/internal/core/series"
	"brushline/internal/platform/logger"
	"brushline/internal/platform/net/http/bind"
	"brushline/internal/services/api/timeline/repo"
)

var validatorsOnce sync.Once

// registerValidators adds the granularity, aggkind and ident tags
func registerValidators() {
	validatorsOnce.Do(func() {
		rules := []struct {
			tag, msg string
			ok       func(string) bool
		}{
			{"granularity", "{0} must be one of hour, day, month, year", func(s string) bool {
				_, err := bucket.ParseGranularity(s)
				return err == nil
			}},
			{"aggkind", "{0} must be one of count, sum, avg, min, max", func(s string) bool {
				_, err := series.ParseKind(s)
				return err == nil
			}},
			{"ident", "{0} must be a plain or schema-qualified identifier", repo.ValidIdent},
		}
		for _, rule := range rules {
			ok := rule.ok
			err := bind.RegisterValidation(rule.tag, rule.msg, func(fl bind.FieldLevel) bool { return ok(fl.Field().String()) })
			if err != nil {
				logger.Get().Error().Err(err).Str("tag", rule.tag).Msg("register validation")
			}
		}
	})
}
