package container

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type port int

func TestCoerce(t *testing.T) {
	n := 3
	tests := []struct {
		name     string
		v        any
		t        reflect.Type
		allowNil bool
		ok       bool
	}{
		{"assignable", 1, reflect.TypeOf((*int)(nil)).Elem(), false, true},
		{"deref pointer", &n, reflect.TypeOf((*int)(nil)).Elem(), false, true},
		{"named basic", 8080, reflect.TypeOf((*port)(nil)).Elem(), false, true},
		{"different kind", "8080", reflect.TypeOf((*port)(nil)).Elem(), false, false},
		{"struct not converted", struct{}{}, reflect.TypeOf((*time.Time)(nil)).Elem(), false, false},
		{"nil rejected", nil, reflect.TypeOf((**int)(nil)).Elem(), false, false},
		{"nil default pointer", nil, reflect.TypeOf((**int)(nil)).Elem(), true, true},
		{"nil default int", nil, reflect.TypeOf((*int)(nil)).Elem(), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := coerce(tt.v, tt.t, tt.allowNil)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.t, v.Type())
			}
		})
	}
}

func TestIsEmpty(t *testing.T) {
	var nilPtr *int
	assert.True(t, isEmpty(nil))
	assert.True(t, isEmpty(nilPtr))
	assert.False(t, isEmpty(0))
	assert.False(t, isEmpty(""))
}

func TestIsPrimitive(t *testing.T) {
	assert.True(t, isPrimitive(reflect.TypeOf((*string)(nil)).Elem()))
	assert.True(t, isPrimitive(reflect.TypeOf((**int)(nil)).Elem()))
	assert.True(t, isPrimitive(reflect.TypeOf((*[]string)(nil)).Elem()))
	assert.False(t, isPrimitive(reflect.TypeOf((*port)(nil)).Elem()))
	assert.False(t, isPrimitive(reflect.TypeOf((**time.Time)(nil)).Elem()))
}
