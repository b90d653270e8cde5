package config

import (
	"fmt"
	"reflect"
	"strings"
)

// OriginDefault marks a setting no configuration layer touched.
const OriginDefault = "default"

// Setting is one effective configuration value.
type Setting struct {
	Key    string `json:"key" yaml:"key"`
	Value  string `json:"value" yaml:"value"`
	Origin string `json:"origin" yaml:"origin"`
}

// flatten walks v by koanf tag and returns one Setting per leaf, in field
// order, with Origin set to OriginDefault.
func flatten(v reflect.Value, prefix string) []Setting {
	var out []Setting
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			continue
		}
		key := prefix + name
		fv := v.Field(i)
		if fv.Kind() == reflect.Struct {
			out = append(out, flatten(fv, key+".")...)
			continue
		}
		out = append(out, Setting{Key: key, Value: fmt.Sprint(fv.Interface()), Origin: OriginDefault})
	}
	return out
}
