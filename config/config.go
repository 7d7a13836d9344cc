package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/glimte/mmate-intercept/contracts"
)

// ErrInvalidConfig is returned when a declaration file fails validation
var ErrInvalidConfig = errors.New("config: invalid declarations")

var validate = validator.New()

// Declarations is the root of a declaration file
type Declarations struct {
	Journal JournalConfig       `yaml:"journal"`
	Targets []TargetDeclaration `yaml:"targets" validate:"dive"`
}

// JournalConfig configures where side effects are recorded
type JournalConfig struct {
	MaxEntries int        `yaml:"max_entries" validate:"gte=0"`
	AMQP       AMQPConfig `yaml:"amqp"`
}

// AMQPConfig configures publishing of journal entries to RabbitMQ.
// Publishing is off when URL is empty.
type AMQPConfig struct {
	URL              string        `yaml:"url" validate:"omitempty,url"`
	Exchange         string        `yaml:"exchange"`
	RoutingKeyPrefix string        `yaml:"routing_key_prefix"`
	PublishRetries   int           `yaml:"publish_retries" validate:"gte=0,lte=10"`
	RetryDelay       time.Duration `yaml:"retry_delay" validate:"gte=0"`
}

// TargetDeclaration lists the chains bound to one target type
type TargetDeclaration struct {
	Name         string                                 `yaml:"name" validate:"required"`
	Construction []contracts.InterceptorSpec            `yaml:"construction" validate:"dive"`
	Fields       map[string][]contracts.InterceptorSpec `yaml:"fields" validate:"dive,keys,required,endkeys,dive"`
	Methods      map[string][]contracts.InterceptorSpec `yaml:"methods" validate:"dive,keys,required,endkeys,dive"`
}

// Load reads and validates declarations from reader
func Load(reader io.Reader) (*Declarations, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	var d Declarations
	if err := decoder.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse declarations: %w", err)
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadFile reads and validates declarations from a file
func LoadFile(path string) (*Declarations, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	d, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return d, nil
}

// Validate checks struct tags, duplicate targets and site support
func (d *Declarations) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, formatValidationError(err))
	}

	seen := make(map[string]bool, len(d.Targets))
	for _, target := range d.Targets {
		if seen[target.Name] {
			return fmt.Errorf("%w: target %s declared twice", ErrInvalidConfig, target.Name)
		}
		seen[target.Name] = true

		if err := checkSite(target.Name, contracts.SiteConstruction, target.Construction); err != nil {
			return err
		}
		for field, specs := range target.Fields {
			if err := checkSite(target.Name+"."+field, contracts.SiteAccessor, specs); err != nil {
				return err
			}
		}
		for method, specs := range target.Methods {
			if err := checkSite(target.Name+"."+method, contracts.SiteMethod, specs); err != nil {
				return err
			}
		}
	}
	return nil
}

// Target returns the declaration for name
func (d *Declarations) Target(name string) (TargetDeclaration, bool) {
	for _, target := range d.Targets {
		if target.Name == name {
			return target, true
		}
	}
	return TargetDeclaration{}, false
}

// Construction returns the construction chain of a target
func (d *Declarations) Construction(name string) []contracts.InterceptorSpec {
	target, _ := d.Target(name)
	return target.Construction
}

// Field returns the accessor chain of a field
func (d *Declarations) Field(name, field string) []contracts.InterceptorSpec {
	target, _ := d.Target(name)
	return target.Fields[field]
}

// Method returns the chain of a method
func (d *Declarations) Method(name, method string) []contracts.InterceptorSpec {
	target, _ := d.Target(name)
	return target.Methods[method]
}

func checkSite(target string, site contracts.Site, specs []contracts.InterceptorSpec) error {
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, target, err)
		}
		if !spec.Kind.Supports(site) {
			return fmt.Errorf("%w: %w", ErrInvalidConfig,
				&contracts.UnsupportedInterceptorError{Target: target, Kind: spec.Kind, Site: site})
		}
	}
	return nil
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required", "required_if":
			messages = append(messages, fmt.Sprintf("%s is required", e.Namespace()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", e.Namespace(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Namespace()))
		}
	}
	return strings.Join(messages, "; ")
}
