package services

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"hrm-admin/console/pkg/models"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateAssignment, ApproverAssignment{})
	return v
}

// validateAssignment checks Value against the domain its Kind allows.
func validateAssignment(sl validator.StructLevel) {
	a := sl.Current().Interface().(ApproverAssignment)
	if a.Value == "" {
		return
	}
	switch a.Kind {
	case KindSpecific:
		if _, err := strconv.ParseInt(strings.TrimSpace(a.Value), 10, 64); err != nil {
			sl.ReportError(a.Value, "approverValue", "Value", "user_id", "")
		}
	case KindDynamic:
		for _, rule := range models.DynamicRules {
			if string(rule) == a.Value {
				return
			}
		}
		sl.ReportError(a.Value, "approverValue", "Value", "dynamic_rule", "")
	}
}

// Names are checked trimmed; a name of only spaces counts as missing.
func validateBasicInfo(v *validator.Validate, info BasicInfo) ValidationErrors {
	info.Name = strings.TrimSpace(info.Name)
	return collect(v.Struct(info), "")
}

func validateStages(v *validator.Validate, stages []StageDraft) ValidationErrors {
	errs := ValidationErrors{}
	if len(stages) == 0 {
		errs["stages"] = "needs at least one stage"
		return errs
	}
	for i, st := range stages {
		st.Name = strings.TrimSpace(st.Name)
		for field, msg := range collect(v.Struct(st), fmt.Sprintf("stages[%d].", i)) {
			errs[field] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// validateUser checks an account form. The password is only required when
// the account is created.
func validateUser(v *validator.Validate, req models.UserRequest, creating bool) ValidationErrors {
	errs := ValidationErrors{}
	check := func(field string, value any, tag string) {
		for f, msg := range collect(v.Var(value, tag), field) {
			errs[f] = msg
		}
	}
	check("username", strings.TrimSpace(req.Username), "required")
	check("email", strings.TrimSpace(req.Email), "required,email")
	if creating {
		check("password", req.Password, "required")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// collect converts validator output into field paths under prefix.
func collect(err error, prefix string) ValidationErrors {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{strings.TrimSuffix(prefix, "."): err.Error()}
	}
	out := ValidationErrors{}
	for _, fe := range fieldErrs {
		// Drop the root struct name from the namespace.
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		out[prefix+ns] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "must be greater than " + fe.Param()
	case "email":
		return "must be an email address"
	case "datetime":
		return "must be a date (YYYY-MM-DD)"
	case "user_id":
		return "must be a numeric user id"
	case "dynamic_rule":
		return "must be a known dynamic rule"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}
