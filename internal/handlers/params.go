package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
)

// getValidator returns the shared validator with English messages that name
// fields by their query parameter.
func getValidator() (*validator.Validate, ut.Translator) {
	validateOnce.Do(func() {
		enLoc := en.New()
		trans, _ := ut.New(enLoc, enLoc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("query"); name != "" {
				return name
			}
			return fld.Name
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		validate, translator = v, trans
	})
	return validate, translator
}

// forecastParams holds the forecast-only query parameters.
type forecastParams struct {
	Horizon int                  `query:"h" validate:"min=0,max=120"`
	Model   models.ForecastModel `query:"model"`
}

// parseCriteria reads the shared filter parameters. Repeated keys build the
// sets; blank values are skipped.
func parseCriteria(q url.Values) models.FilterCriteria {
	return models.FilterCriteria{
		Categories: values(q, "categories"),
		Cities:     values(q, "cities"),
		States:     values(q, "states"),
		StartDate:  strings.TrimSpace(q.Get("start_date")),
		EndDate:    strings.TrimSpace(q.Get("end_date")),
	}
}

func values(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// parseForecast defaults a missing or non-numeric h to DefaultHorizon and
// rejects values outside [0, 120]. The returned bool reports whether the
// requested model was recognised.
func parseForecast(q url.Values) (forecastParams, bool, error) {
	params := forecastParams{Horizon: models.DefaultHorizon}
	if raw := strings.TrimSpace(q.Get("h")); raw != "" {
		if h, err := strconv.Atoi(raw); err == nil {
			params.Horizon = h
		}
	}

	model, known := models.ParseForecastModel(q.Get("model"))
	params.Model = model

	return params, known, checkForecast(params)
}

func checkForecast(params forecastParams) error {
	v, trans := getValidator()
	err := v.Struct(params)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w: %s, got %v", services.ErrInvalidParameter, verrs[0].Translate(trans), verrs[0].Value())
	}
	return err
}
