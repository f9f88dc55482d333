package env

import "fmt"

// Environment names where the dev server runs. Production tightens defaults
// that are only safe on a laptop.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

func (e Environment) IsDevelopment() bool { return e == Development }
func (e Environment) IsProduction() bool  { return e == Production }

func (e Environment) Validate() error {
	switch e {
	case Development, Production:
		return nil
	default:
		return fmt.Errorf("unknown environment %q", string(e))
	}
}
