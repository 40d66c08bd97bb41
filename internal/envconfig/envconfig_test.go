package envconfig

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetStringFallsBackToDefault(t *testing.T) {
	ec := New("OSM2RDF_TEST")
	assert.Equal(t, "fallback", ec.GetString("MISSING", "fallback"))

	os.Setenv("OSM2RDF_TEST_HOST", "example.org")
	defer os.Unsetenv("OSM2RDF_TEST_HOST")
	assert.Equal(t, "example.org", ec.GetString("HOST", "fallback"))
}

func TestMustGetStringPanicsWhenUnset(t *testing.T) {
	ec := New("OSM2RDF_TEST")
	assert.Panics(t, func() { ec.MustGetString("DEFINITELY_UNSET") })
}

func TestGetIntParsesOrFallsBack(t *testing.T) {
	ec := New("OSM2RDF_TEST")
	os.Setenv("OSM2RDF_TEST_WORKERS", "8")
	defer os.Unsetenv("OSM2RDF_TEST_WORKERS")
	assert.Equal(t, 8, ec.GetInt("WORKERS", 4))
	assert.Equal(t, 4, ec.GetInt("MISSING", 4))

	os.Setenv("OSM2RDF_TEST_BAD", "not-a-number")
	defer os.Unsetenv("OSM2RDF_TEST_BAD")
	assert.Equal(t, 4, ec.GetInt("BAD", 4))
}

func TestGetDurationParsesOrFallsBack(t *testing.T) {
	ec := New("OSM2RDF_TEST")
	os.Setenv("OSM2RDF_TEST_TIMEOUT", "90s")
	defer os.Unsetenv("OSM2RDF_TEST_TIMEOUT")
	assert.Equal(t, 90*time.Second, ec.GetDuration("TIMEOUT", 60*time.Second))
	assert.Equal(t, 60*time.Second, ec.GetDuration("MISSING", 60*time.Second))
}

func TestGetStringSliceSplitsAndTrims(t *testing.T) {
	ec := New("OSM2RDF_TEST")
	os.Setenv("OSM2RDF_TEST_HOSTS", "a, b ,, c")
	defer os.Unsetenv("OSM2RDF_TEST_HOSTS")
	assert.Equal(t, []string{"a", "b", "c"}, ec.GetStringSlice("HOSTS", nil))
}

func TestNoPrefixUsesBareKey(t *testing.T) {
	ec := New("")
	os.Setenv("BARE_KEY", "v")
	defer os.Unsetenv("BARE_KEY")
	assert.Equal(t, "v", ec.GetString("BARE_KEY", ""))
}
