package serialization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustKey(t *testing.T, args ...interface{}) string {
	t.Helper()
	key, err := Key(args)
	require.NoError(t, err)
	return key
}

func TestKey(t *testing.T) {
	t.Run("same arguments give same key", func(t *testing.T) {
		assert.Equal(t, mustKey(t, 1, 2), mustKey(t, 1, 2))
	})

	t.Run("argument order matters", func(t *testing.T) {
		assert.NotEqual(t, mustKey(t, 1, 2), mustKey(t, 2, 1))
	})

	t.Run("int and float arguments are distinct", func(t *testing.T) {
		assert.NotEqual(t, mustKey(t, 1, 2), mustKey(t, 1.0, 2.0))
	})

	t.Run("string and number are distinct", func(t *testing.T) {
		assert.NotEqual(t, mustKey(t, "1"), mustKey(t, 1))
	})

	t.Run("map keys are sorted", func(t *testing.T) {
		a := map[string]int{"b": 2, "a": 1, "c": 3}
		b := map[string]int{"c": 3, "a": 1, "b": 2}
		assert.Equal(t, mustKey(t, a), mustKey(t, b))
	})

	t.Run("nil and empty list are encoded", func(t *testing.T) {
		assert.Equal(t, `[]`, mustKey(t))
		assert.Equal(t, `[{"t":"nil","v":null}]`, mustKey(t, nil))
	})

	t.Run("exact encoding", func(t *testing.T) {
		assert.Equal(t, `[{"t":"int","v":1},{"t":"string","v":"a"}]`, mustKey(t, 1, "a"))
	})

	t.Run("functions have no canonical encoding", func(t *testing.T) {
		_, err := Key([]interface{}{func() {}})
		assert.ErrorIs(t, err, ErrUnsupportedArgument)
	})
}

type point struct {
	x, y int
}

type Coordinate struct {
	Lat, Lng float64
}

type secretive struct {
	Name  string
	Token string `json:"-"`
}

type inner struct {
	Value int
}

type withEmbedded struct {
	inner
	Label string
}

type node struct {
	Next *node
}

func TestKeyRejectsLossyArguments(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
	}{
		{"unexported fields", point{1, 2}},
		{"pointer to unexported fields", &point{1, 2}},
		{"unexported fields nested in a slice", []point{{1, 2}}},
		{"unexported fields behind an interface", map[string]interface{}{"p": point{1, 2}}},
		{"field skipped by its tag", secretive{Name: "a", Token: "b"}},
		{"interface map keys", map[interface{}]int{1: 1}},
		{"float map keys", map[float64]int{1.5: 1}},
		{"channel", make(chan int)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Key([]interface{}{tt.arg})
			assert.ErrorIs(t, err, ErrUnsupportedArgument)
		})
	}

	t.Run("cyclic pointers", func(t *testing.T) {
		n := &node{}
		n.Next = n
		_, err := Key([]interface{}{n})
		assert.ErrorIs(t, err, ErrUnsupportedArgument)
	})
}

func TestKeyStructArguments(t *testing.T) {
	t.Run("exported fields identify the value", func(t *testing.T) {
		assert.Equal(t, mustKey(t, Coordinate{1, 2}), mustKey(t, Coordinate{1, 2}))
		assert.NotEqual(t, mustKey(t, Coordinate{1, 2}), mustKey(t, Coordinate{10, 20}))
	})

	t.Run("pointers are keyed by what they point to", func(t *testing.T) {
		assert.Equal(t, mustKey(t, &Coordinate{1, 2}), mustKey(t, &Coordinate{1, 2}))
		assert.NotEqual(t, mustKey(t, &Coordinate{1, 2}), mustKey(t, &Coordinate{3, 4}))
	})

	t.Run("embedded unexported struct with exported fields", func(t *testing.T) {
		a := withEmbedded{inner: inner{Value: 1}, Label: "x"}
		b := withEmbedded{inner: inner{Value: 2}, Label: "x"}
		assert.NotEqual(t, mustKey(t, a), mustKey(t, b))
	})

	t.Run("marshalers use their own encoding", func(t *testing.T) {
		at := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
		assert.Equal(t, mustKey(t, at), mustKey(t, at))
		assert.NotEqual(t, mustKey(t, at), mustKey(t, at.Add(time.Second)))
	})

	t.Run("nested numbers keep their type", func(t *testing.T) {
		assert.NotEqual(t, mustKey(t, []interface{}{1}), mustKey(t, []interface{}{1.0}))
		assert.Equal(t,
			mustKey(t, map[string]interface{}{"a": 1, "b": "x"}),
			mustKey(t, map[string]interface{}{"b": "x", "a": 1}),
		)
		assert.Equal(t, `[{"t":"[]interface {}","s":["int","string"],"v":[1,"a"]}]`, mustKey(t, []interface{}{1, "a"}))
	})
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "nil", TypeName(nil))
	assert.Equal(t, "int", TypeName(1))
	assert.Equal(t, "float64", TypeName(1.0))
	assert.Equal(t, "[]string", TypeName([]string{}))
}
