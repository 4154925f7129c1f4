package events

import (
	"os"

	"github.com/expr-lang/expr"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/fleetpulse/fleetpulse/pkg/util"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Thresholds struct {
	LowBattery      float64 `yaml:"lowbattery"`
	CriticalBattery float64 `yaml:"criticalbattery"`

	Overspeed         float64 `yaml:"overspeed"`
	RapidAcceleration float64 `yaml:"rapidacceleration"`
	HarshBraking      float64 `yaml:"harshbraking"`

	MovingSpeed float64 `yaml:"movingspeed"`
	IdleSpeed   float64 `yaml:"idlespeed"`
	IdleMinutes int     `yaml:"idleminutes"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		LowBattery:      20,
		CriticalBattery: 10,

		Overspeed:         100,
		RapidAcceleration: 30,
		HarshBraking:      40,

		MovingSpeed: 5,
		IdleSpeed:   5,
		IdleMinutes: 30,
	}
}

// Profile overrides the builtin thresholds and can define extra rules as
// expressions over the previous & current sample
type Profile struct {
	Thresholds Thresholds `yaml:"thresholds"`

	CustomRules []CustomRuleDefinition `yaml:"customrules"`
}

type CustomRuleDefinition struct {
	Name      string `yaml:"name"`
	EventType string `yaml:"eventtype"`
	Severity  string `yaml:"severity"`

	Title       string `yaml:"title"`
	Description string `yaml:"description"`

	Expression       string `yaml:"expression"`
	RequiresPrevious bool   `yaml:"requiresprevious"`
}

// LoadProfile reads the profile file named by FLEETPULSE_DETECTOR_PROFILE,
// falling back to the builtin thresholds when unset
func LoadProfile() *Profile {
	profile := &Profile{
		Thresholds: DefaultThresholds(),
	}

	env := util.GetEnvironmentVariables()

	profilePath := env["FLEETPULSE_DETECTOR_PROFILE"]
	if profilePath == "" {
		return profile
	}

	profileYaml, err := os.ReadFile(profilePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", profilePath).Msg("Failed to load detector profile")
	}

	if err := yaml.Unmarshal(profileYaml, profile); err != nil {
		log.Fatal().Err(err).Str("path", profilePath).Msg("Failed to parse detector profile")
	}

	log.Info().Str("path", profilePath).Int("customrules", len(profile.CustomRules)).Msg("Loaded detector profile")

	return profile
}

// CompileCustomRules turns the expression definitions into rules. A
// definition that fails to compile is dropped, never fatal.
func (p *Profile) CompileCustomRules() []*Rule {
	var rules []*Rule

	for _, definition := range p.CustomRules {
		program, err := expr.Compile(definition.Expression, expr.AsBool())
		if err != nil {
			log.Error().Err(err).Str("rule", definition.Name).Msg("Failed to compile custom rule")
			continue
		}

		severity := parseSeverity(definition.Severity)
		eventType := fvdf.EventType(definition.EventType)
		title := definition.Title
		description := definition.Description
		name := definition.Name

		rules = append(rules, &Rule{
			Name:             name,
			RequiresPrevious: definition.RequiresPrevious,
			Check: func(ctx *DetectionContext) *fvdf.Event {
				output, err := expr.Run(program, map[string]interface{}{
					"prev":   ctx.Previous,
					"sample": ctx.Sample,
				})
				if err != nil {
					log.Debug().Err(err).Str("rule", name).Msg("Custom rule evaluation failed")
					return nil
				}

				if matched, _ := output.(bool); !matched {
					return nil
				}

				return &fvdf.Event{
					EventType:   eventType,
					Severity:    severity,
					Title:       title,
					Description: description,
				}
			},
		})
	}

	return rules
}

func parseSeverity(value string) fvdf.EventSeverity {
	switch fvdf.EventSeverity(value) {
	case fvdf.EventSeverityInfo, fvdf.EventSeverityWarning, fvdf.EventSeverityError, fvdf.EventSeverityCritical:
		return fvdf.EventSeverity(value)
	}

	return fvdf.EventSeverityWarning
}
