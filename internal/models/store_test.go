package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorePreservesUnknownKeys(t *testing.T) {
	input := []byte(`{"version":1,"users":[],"students":[{"id":"s","name":"Ann","className":"9A"}],"theme":{"dark":true},"notes":"keep me"}`)

	var store Store
	require.NoError(t, json.Unmarshal(input, &store))
	require.Len(t, store.Students, 1)
	require.Len(t, store.Extra, 2)
	require.JSONEq(t, `{"dark":true}`, string(store.Extra["theme"]))

	out, err := json.Marshal(store)
	require.NoError(t, err)

	var roundTrip map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &roundTrip))
	require.JSONEq(t, `"keep me"`, string(roundTrip["notes"]))
	require.JSONEq(t, `{"dark":true}`, string(roundTrip["theme"]))
	require.Contains(t, roundTrip, "marks")
}

func TestStoreWithoutExtrasHasNilExtra(t *testing.T) {
	var store Store
	require.NoError(t, json.Unmarshal([]byte(`{"version":1,"users":[],"students":[]}`), &store))
	require.Nil(t, store.Extra)
}

func TestStoreLookups(t *testing.T) {
	store := Store{
		Users: []User{
			{ID: "u1", Username: "teacher1", Role: RoleTeacher},
			{ID: "u2", Username: "ann", Role: RoleStudent, StudentID: "s1"},
		},
		Students: []Student{{ID: "s1", Name: "Ann", ClassName: "9A"}, {ID: "s2", Name: "Ben", ClassName: "9A"}},
	}

	require.Equal(t, "Ann", store.StudentName("s1"))
	require.Equal(t, UnknownName, store.StudentName("gone"))
	require.Equal(t, "ann", store.UsernameForStudent("s1"))
	require.Equal(t, UnknownUsername, store.UsernameForStudent("s2"))
	require.True(t, store.UsernameTaken("ann", "u1"))
	require.False(t, store.UsernameTaken("ann", "u2"))
}

func TestMarkScoreTreatsBlankAsZero(t *testing.T) {
	value := 7.5
	require.Equal(t, 0.0, Mark{}.Score())
	require.Equal(t, 7.5, Mark{Marks: &value}.Score())
}
