package config

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/opmodel/stager/internal/compat"
	"github.com/opmodel/stager/internal/copier"
	oerrors "github.com/opmodel/stager/internal/errors"
)

//go:embed schema.cue
var schemaFS embed.FS

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Is makes validation failures match oerrors.ErrValidation.
func (e ValidationErrors) Is(target error) bool {
	return target == oerrors.ErrValidation
}

// Validator validates configuration against the embedded CUE schema.
type Validator struct {
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator creates a new configuration validator.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()

	schemaData, err := schemaFS.ReadFile("schema.cue")
	if err != nil {
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}

	compiled := ctx.CompileBytes(schemaData)
	if compiled.Err() != nil {
		return nil, fmt.Errorf("compiling schema: %w", compiled.Err())
	}

	schema := compiled.LookupPath(cue.ParsePath("#Config"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("looking up #Config: %w", schema.Err())
	}

	return &Validator{
		ctx:    ctx,
		schema: schema,
	}, nil
}

// Validate validates the given configuration.
func (v *Validator) Validate(cfg *Config) error {
	errs := v.unify(v.ctx.Encode(cfg))
	errs = append(errs, checkValues(cfg)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateFile validates a configuration file at the given path. Unlike
// Validate, it also reports keys the schema does not know.
func (v *Validator) ValidateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var errs ValidationErrors
	if len(bytes.TrimSpace(data)) > 0 {
		file, err := cueyaml.Extract(path, data)
		if err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
		errs = v.unify(v.ctx.BuildFile(file))
	}

	cfg, err := NewFileLoader().Load(path)
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}
	errs = append(errs, checkValues(cfg)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *Validator) unify(val cue.Value) ValidationErrors {
	if val.Err() != nil {
		return toValidationErrors(val.Err())
	}
	unified := v.schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) ValidationErrors {
	var errs ValidationErrors
	for _, e := range cueerrors.Errors(err) {
		field := strings.Join(e.Path(), ".")
		if field == "" {
			field = "config"
		}
		format, args := e.Msg()
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	return errs
}

// checkValues applies the checks a regular expression cannot express.
func checkValues(cfg *Config) ValidationErrors {
	var errs ValidationErrors

	if cfg.Target.Version != "" && compat.MajorMinor(cfg.Target.Version) == "" {
		errs = append(errs, ValidationError{Field: "target.version", Message: "must be a major.minor version such as 3.8"})
	}
	if cfg.Target.Platform != "" && compat.PlatformFamily(cfg.Target.Platform) == compat.FamilyUnknown {
		errs = append(errs, ValidationError{Field: "target.platform", Message: "unsupported platform"})
	}
	if cfg.HostVersion != "" && compat.MajorMinor(cfg.HostVersion) == "" {
		errs = append(errs, ValidationError{Field: "hostVersion", Message: "must be a major.minor version such as 3.8"})
	}
	if _, err := copier.NewExcluder(cfg.Exclude); err != nil {
		errs = append(errs, ValidationError{Field: "exclude", Message: err.Error()})
	}
	for i, p := range cfg.SearchPath {
		if strings.TrimSpace(p) != p {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("searchPath.%d", i),
				Message: "must not have leading or trailing whitespace",
			})
		}
	}

	return errs
}
