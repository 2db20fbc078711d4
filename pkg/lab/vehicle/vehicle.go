// Package vehicle is the reference solution for the composition task: a
// vehicle has features rather than inheriting from them.
package vehicle

import "fmt"

// Feature is one capability a vehicle can be composed with.
type Feature interface {
	Describe() string
}

type Engine struct{}
type Wheels struct{}
type Wings struct{}
type Propeller struct{}

func (Engine) Describe() string    { return "Engine started" }
func (Wheels) Describe() string    { return "Wheels rolling" }
func (Wings) Describe() string     { return "Wings deployed" }
func (Propeller) Describe() string { return "Propeller spinning" }

type Vehicle struct {
	Name     string
	features []Feature
}

func New(name string, features ...Feature) *Vehicle {
	return &Vehicle{Name: name, features: features}
}

// Describe returns one description per feature, in composition order.
func (v *Vehicle) Describe() []string {
	out := make([]string, len(v.features))
	for i, f := range v.features {
		out[i] = f.Describe()
	}
	return out
}

// Has reports whether v was composed with a feature of type F.
func Has[F Feature](v *Vehicle) bool {
	for _, f := range v.features {
		if _, ok := f.(F); ok {
			return true
		}
	}
	return false
}

// FeatureByName maps a catalog feature name to its implementation.
func FeatureByName(name string) (Feature, error) {
	switch name {
	case "Engine":
		return Engine{}, nil
	case "Wheels":
		return Wheels{}, nil
	case "Wings":
		return Wings{}, nil
	case "Propeller":
		return Propeller{}, nil
	}
	return nil, fmt.Errorf("unknown feature %q", name)
}

// Build composes a vehicle from catalog feature names.
func Build(name string, featureNames []string) (*Vehicle, error) {
	features := make([]Feature, 0, len(featureNames))
	for _, n := range featureNames {
		f, err := FeatureByName(n)
		if err != nil {
			return nil, fmt.Errorf("vehicle %s: %w", name, err)
		}
		features = append(features, f)
	}
	return New(name, features...), nil
}
