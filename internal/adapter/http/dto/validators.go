package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"xrpl-wallet/internal/core/domain"
	"xrpl-wallet/internal/xrpl/signing"
)

var safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]{1,100}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
		_ = v.RegisterValidation("xrpl_address", validateXRPLAddress)
		_ = v.RegisterValidation("xrp_amount", validateXRPAmount)
	}
}

// IsSafeID reports whether s can be used as a storage key component:
// 1-100 characters of alphanumerics, underscore, dash and dot.
func IsSafeID(s string) bool {
	return safeStringRe.MatchString(s)
}

func validateSafeID(fl validator.FieldLevel) bool {
	return IsSafeID(fl.Field().String())
}

// validateXRPLAddress accepts classic r-addresses with a valid checksum.
func validateXRPLAddress(fl validator.FieldLevel) bool {
	return signing.IsValidAddress(strings.TrimSpace(fl.Field().String()))
}

// validateXRPAmount accepts positive XRP amounts expressible in whole drops.
func validateXRPAmount(fl validator.FieldLevel) bool {
	amount, err := domain.ParseXRP(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	_, err = domain.PaymentDrops(amount)
	return err == nil
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(sanitize(elem.String()))
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
