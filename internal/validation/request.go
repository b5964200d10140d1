package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"ugbmonitor/internal/geo"
)

// AllValues is the filter value that selects everything.
const AllValues = "Semua"

// FilterQuery is the filter selection accepted by the read endpoints.
// Empty lists and AllValues select every row.
type FilterQuery struct {
	UP3    []string `json:"up3" validate:"max=50,dive,max=200"`
	ULP    []string `json:"ulp" validate:"max=200,dive,max=200"`
	Status []string `json:"status" validate:"max=4,dive,status"`
}

// ClusterQuery locates the cabinets at a clicked map point.
type ClusterQuery struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lon *float64 `json:"lon" validate:"required"`
}

// New returns a validator with the application's custom rules. Field
// names in errors use the json tag.
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("status", isStatus)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// isStatus accepts any spelling of a domain status, or AllValues.
func isStatus(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return strings.EqualFold(strings.TrimSpace(s), AllValues) || geo.IsDomainStatus(geo.NormalizeStatus(s))
}
