package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_FirstString(t *testing.T) {
	doc := Document{
		"vacio":  "",
		"nombre": "JUAN",
		"anio":   float64(2018),
		"nulo":   nil,
	}

	t.Run("candidate order decides", func(t *testing.T) {
		assert.Equal(t, "JUAN", doc.FirstString("desconocido", "nombre", "anio"))
	})

	t.Run("empty values are skipped", func(t *testing.T) {
		assert.Equal(t, "JUAN", doc.FirstString("vacio", "nulo", "nombre"))
	})

	t.Run("json numbers render as strings", func(t *testing.T) {
		assert.Equal(t, "2018", doc.FirstString("anio"))
	})

	t.Run("no candidate present", func(t *testing.T) {
		assert.Empty(t, doc.FirstString("x", "y"))
	})

	t.Run("nil document", func(t *testing.T) {
		assert.Empty(t, Document(nil).FirstString("nombre"))
	})
}

func TestDocument_FirstBool(t *testing.T) {
	doc := Document{"vigente": true, "activo": "false", "texto": "quizas"}

	v, ok := doc.FirstBool("vigente")
	assert.True(t, ok)
	assert.True(t, v)

	v, ok = doc.FirstBool("activo")
	assert.True(t, ok, "string booleans accepted")
	assert.False(t, v)

	_, ok = doc.FirstBool("texto")
	assert.False(t, ok)

	_, ok = doc.FirstBool("ausente")
	assert.False(t, ok)
}

func TestDocument_FirstFloat(t *testing.T) {
	doc := Document{"monto": 120.5, "saldo": "33.25", "texto": "nada"}

	v, ok := doc.FirstFloat("monto")
	assert.True(t, ok)
	assert.Equal(t, 120.5, v)

	v, ok = doc.FirstFloat("saldo")
	assert.True(t, ok, "quoted numbers accepted")
	assert.Equal(t, 33.25, v)

	_, ok = doc.FirstFloat("texto")
	assert.False(t, ok)
}

func TestDocument_StringList(t *testing.T) {
	t.Run("list of strings", func(t *testing.T) {
		doc := Document{"restricciones": []any{"LENTES", "A"}}
		assert.Equal(t, []string{"LENTES", "A"}, doc.StringList("restricciones"))
	})

	t.Run("scalar accepted as one-element list", func(t *testing.T) {
		doc := Document{"restricciones": "LENTES"}
		assert.Equal(t, []string{"LENTES"}, doc.StringList("restricciones"))
	})

	t.Run("absent", func(t *testing.T) {
		assert.Nil(t, Document{}.StringList("restricciones"))
	})
}

func TestDocument_DocumentList(t *testing.T) {
	t.Run("list of objects", func(t *testing.T) {
		doc := Document{"propietarios": []any{
			map[string]any{"nombre": "A"},
			map[string]any{"nombre": "B"},
			"basura",
		}}
		list := doc.DocumentList("propietarios")
		require.Len(t, list, 2, "non-object entries dropped")
		assert.Equal(t, "A", list[0].FirstString("nombre"))
	})

	t.Run("single object accepted as one-element list", func(t *testing.T) {
		doc := Document{"propietarios": map[string]any{"nombre": "SOLO"}}
		list := doc.DocumentList("propietarios")
		require.Len(t, list, 1)
		assert.Equal(t, "SOLO", list[0].FirstString("nombre"))
	})
}

func TestIdentityRecord_ComposedName(t *testing.T) {
	tests := []struct {
		name string
		rec  IdentityRecord
		want string
	}{
		{name: "full name wins", rec: IdentityRecord{FullName: "JUAN PEREZ LOPEZ", Names: "JUAN"}, want: "JUAN PEREZ LOPEZ"},
		{name: "composed from parts", rec: IdentityRecord{Names: "JUAN", PaternalSurname: "PEREZ", MaternalSurname: "LOPEZ"}, want: "JUAN PEREZ LOPEZ"},
		{name: "missing parts skipped", rec: IdentityRecord{Names: "JUAN", MaternalSurname: "LOPEZ"}, want: "JUAN LOPEZ"},
		{name: "surnames only", rec: IdentityRecord{PaternalSurname: "PEREZ"}, want: "PEREZ"},
		{name: "empty", rec: IdentityRecord{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.ComposedName())
		})
	}
}

func TestQueryState_Settled(t *testing.T) {
	assert.False(t, QueryState{}.Settled(), "idle is not settled")
	assert.False(t, QueryState{Loading: true}.Settled())
	assert.True(t, QueryState{Error: "boom"}.Settled())
}
