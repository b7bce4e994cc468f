package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/inconshreveable/log15.v2"
)

// errList is an array of errors.
type errList []error

// Error joins every error so an errList can be returned as one.
func (l errList) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// addError builds an error object and appends it to this instances errors.
func (c *Config) addError(format string, args ...interface{}) {
	c.errors.addError(format, args...)
}

// addError builds an error object and appends it to this instances errors.
func (l *errList) addError(format string, args ...interface{}) {
	*l = append(*l, fmt.Errorf(format, args...))
}

// Errors returns the errors encountered during validation.
func (c *Config) Errors() []error {
	ers := make([]error, len(c.errors))
	copy(ers, c.errors)
	return ers
}

// DisplayErrors logs each error encountered during validation.
func (c *Config) DisplayErrors(logger log15.Logger) {
	for _, e := range c.errors {
		logger.Error(e.Error())
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the struct tags and the rules tags cannot express. It
// returns false and records errors if anything is wrong.
func (c *Config) Validate() bool {
	c.errors = nil

	if err := newValidator().Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			c.addError(fmtErrInvalid, "config", "structure", err)
			return false
		}
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				c.addError(fmtErrMissing, fe.Namespace(), fe.Field())
			} else {
				c.addError(fmtErrTag, fe.Namespace(), fe.Tag(), fe.Value())
			}
		}
	}

	c.validateServer()
	c.validateOpers()
	c.validateLinks()

	return len(c.errors) == 0
}

func (c *Config) validateServer() {
	sid := c.Server.SID
	if len(sid) == 3 {
		if sid[0] < '0' || sid[0] > '9' || !isIDChar(sid[1]) || !isIDChar(sid[2]) {
			c.addError(fmtErrInvalid, "server", "sid", sid)
		}
	}

	if len(c.Server.Name) > 0 && !strings.Contains(c.Server.Name, ".") {
		c.addError(fmtErrInvalid, "server", "name", c.Server.Name)
	}
}

func (c *Config) validateOpers() {
	seen := make(map[string]bool)
	for _, o := range c.Opers {
		if seen[o.Name] {
			c.addError(fmtErrDupe, "opers", "name", o.Name)
		}
		seen[o.Name] = true

		if len(o.Password) > 0 && !strings.HasPrefix(o.Password, "$2") {
			c.addError(fmtErrInvalid, "opers."+o.Name, "password hash", "not bcrypt")
		}
	}
}

func (c *Config) validateLinks() {
	seen := make(map[string]bool)
	for _, l := range c.Links {
		key := strings.ToLower(l.Name)
		if seen[key] {
			c.addError(fmtErrDupe, "links", "name", l.Name)
		}
		seen[key] = true

		if strings.EqualFold(l.Name, c.Server.Name) {
			c.addError(fmtErrInvalid, "links", "name (that's us)", l.Name)
		}
	}
}

func isIDChar(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z')
}
