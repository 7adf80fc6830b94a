package mse

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCard struct {
	Name     string
	Cost     int `mse:"casting_cost"`
	RuleText string
	Secret   string `mse:"-"`
}

type testSet struct {
	Title       string
	HasStyling  bool
	Cards       []testCard `mse:"card"`
	TimeCreated time.Time
}

const testSetDoc = "mse_version: 2.0.0\n" +
	"title: Test Set\n" +
	"has_styling: true\n" +
	"time_created: 2008-07-15 14:33:20\n" +
	"card:\n" +
	"\tname: Forest\n" +
	"\tcasting_cost: 0\n" +
	"\trule_text:\n" +
	"\t\tTap: add one green mana\n" +
	"\t\tto your mana pool.\n" +
	"card:\n" +
	"\tname: Island\n" +
	"\tcasting_cost: 3\n"

func TestDecodeStruct(t *testing.T) {
	var set testSet
	err := Unmarshal([]byte(testSetDoc), &set, WithAppVersion(2000000))
	require.NoError(t, err)

	assert.Equal(t, "Test Set", set.Title)
	assert.True(t, set.HasStyling)
	assert.Equal(t, time.Date(2008, 7, 15, 14, 33, 20, 0, time.UTC), set.TimeCreated)

	require.Len(t, set.Cards, 2)
	assert.Equal(t, "Forest", set.Cards[0].Name)
	assert.Equal(t, 0, set.Cards[0].Cost)
	assert.Equal(t, "Tap: add one green mana\nto your mana pool.", set.Cards[0].RuleText)
	assert.Equal(t, "Island", set.Cards[1].Name)
	assert.Equal(t, 3, set.Cards[1].Cost)
}

func TestDecodeUnknownKeyWarns(t *testing.T) {
	doc := "title: x\nmystery: 1\n"
	var out struct{ Title string }
	d, err := NewDecoder(strings.NewReader(doc))
	require.NoError(t, err)
	require.NoError(t, d.Decode(&out))

	assert.Equal(t, "x", out.Title)
	msgs := warningMessages(d.Reader())
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "Unexpected key: 'mystery'")
}

func TestDecodeUnknownKeyLenient(t *testing.T) {
	doc := "title: x\nmystery: 1\n"
	var out struct{ Title string }
	d, err := NewDecoder(strings.NewReader(doc), WithIgnoreInvalid(true))
	require.NoError(t, err)
	require.NoError(t, d.Decode(&out))
	assert.Equal(t, "x", out.Title)
	assert.Empty(t, d.Reader().Warnings())
}

func TestDecodeMap(t *testing.T) {
	doc := "red: rgb(255,0,0)\ngreen: rgb(0,255,0)\n"
	var out map[string]string
	require.NoError(t, Unmarshal([]byte(doc), &out))
	assert.Equal(t, map[string]string{
		"red":   "rgb(255,0,0)",
		"green": "rgb(0,255,0)",
	}, out)
}

func TestDecodeNestedMap(t *testing.T) {
	doc := "style:\n\tfont: Arial\n\tsize: 12\n"
	var out struct {
		Style map[string]string
	}
	require.NoError(t, Unmarshal([]byte(doc), &out))
	assert.Equal(t, map[string]string{"font": "Arial", "size": "12"}, out.Style)
}

func TestDecodePointerField(t *testing.T) {
	doc := "note: hello\n"
	var out struct {
		Note *string
	}
	require.NoError(t, Unmarshal([]byte(doc), &out))
	require.NotNil(t, out.Note)
	assert.Equal(t, "hello", *out.Note)
}

func TestDecodeScalarKinds(t *testing.T) {
	var ok struct {
		Count int64
		Ratio float32
		Flag  bool
	}
	require.NoError(t, Unmarshal([]byte("count: 7\nratio: 0.5\nflag: yes\n"), &ok))
	assert.Equal(t, int64(7), ok.Count)
	assert.Equal(t, float32(0.5), ok.Ratio)
	assert.True(t, ok.Flag)

	// 300 does not fit a uint8.
	var small struct {
		Small uint8
	}
	assert.Error(t, Unmarshal([]byte("small: 300\n"), &small))
}

func TestDecodeSpecialTypes(t *testing.T) {
	doc := "pos: (1.5,2.5)\nimage: cards\\art.png\nvisible: yes\n"
	var out struct {
		Pos     Vector2D
		Image   FileName
		Visible Tribool
	}
	require.NoError(t, Unmarshal([]byte(doc), &out))
	assert.Equal(t, Vector2D{X: 1.5, Y: 2.5}, out.Pos)
	assert.Equal(t, FileName("cards/art.png"), out.Image)
	assert.Equal(t, TriTrue, out.Visible)
}

func TestDecodeIntoNonPointer(t *testing.T) {
	var out struct{}
	assert.Error(t, Unmarshal([]byte("a: 1\n"), out))
	assert.Error(t, Unmarshal([]byte("a: 1\n"), nil))
}

func TestFieldKey(t *testing.T) {
	type probe struct {
		DisplayName string
		Simple      string
		Tagged      string `mse:"other_name"`
		Skipped     string `mse:"-"`
	}
	pt := reflect.TypeOf(probe{})
	assert.Equal(t, "display name", fieldKey(pt.Field(0)))
	assert.Equal(t, "simple", fieldKey(pt.Field(1)))
	assert.Equal(t, "other name", fieldKey(pt.Field(2)))
	assert.Equal(t, "-", fieldKey(pt.Field(3)))
}
