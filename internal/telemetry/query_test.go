package telemetry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const missingParams = "Missing required parameters: type and location"

func TestValidateAcceptsEveryValidType(t *testing.T) {
	for _, typ := range ValidTypes {
		assert.NoError(t, Query{Type: typ, Location: "kitchen"}.Validate(), typ)
	}
}

func TestValidateMissingParametersProperty(t *testing.T) {
	candidates := []string{"", "temperature", "humidity", "wind", "TEMPERATURE"}

	rapid.Check(t, func(rt *rapid.T) {
		typ := rapid.SampledFrom(candidates).Draw(rt, "type")
		location := rapid.String().Draw(rt, "location")
		if rapid.Bool().Draw(rt, "blank_type") {
			typ = ""
		} else {
			location = ""
		}

		err := Query{Type: Type(typ), Location: location}.Validate()

		var gwErr *Error
		require.True(rt, errors.As(err, &gwErr))
		assert.Equal(rt, KindValidation, gwErr.Kind)
		assert.Equal(rt, missingParams, gwErr.Message)
	})
}

func TestValidateInvalidTypeProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		typ := rapid.StringMatching(`[A-Za-z_]{1,16}`).
			Filter(func(s string) bool { return !Type(s).Valid() }).
			Draw(rt, "type")
		location := rapid.StringMatching(`[A-Za-z ]{1,16}`).Draw(rt, "location")

		err := Query{Type: Type(typ), Location: location}.Validate()

		var gwErr *Error
		require.True(rt, errors.As(err, &gwErr))
		assert.Equal(rt, KindValidation, gwErr.Kind)
		assert.Equal(rt,
			"Invalid telemetry type. Must be one of: temperature, humidity, light, motion, air_quality, pressure",
			gwErr.Message)
	})
}

func TestTypeSupported(t *testing.T) {
	assert.True(t, TypeTemperature.Supported())
	for _, typ := range []Type{TypeHumidity, TypeLight, TypeMotion, TypeAirQuality, TypePressure} {
		assert.True(t, typ.Valid())
		assert.False(t, typ.Supported())
	}
	assert.False(t, Type("Temperature").Valid())
}
