package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"mergington-activities/pkg/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAddUpdateValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "activities.json")
	var out bytes.Buffer

	require.NoError(t, run("init", []string{"-path", path}, &out))
	assert.Error(t, run("init", []string{"-path", path}, &out), "init refuses to overwrite")

	require.NoError(t, run("add", []string{
		"-path", path,
		"-name", "Robotics Club",
		"-description", "Build and program robots",
		"-schedule", "Tuesdays, 3:30 PM - 5:00 PM",
		"-max", "14",
		"-participants", "ada@mergington.edu, grace@mergington.edu",
	}, &out))

	require.NoError(t, run("update", []string{
		"-path", path, "-name", "Chess Club", "-field", "max_participants", "-value", "14",
	}, &out))

	out.Reset()
	require.NoError(t, run("validate", []string{"-path", path}, &out))
	assert.Contains(t, out.String(), "Found 10 activities")

	cat, err := catalog.LoadCatalog(path)
	require.NoError(t, err)
	robotics, ok := cat.Find("Robotics Club")
	require.True(t, ok)
	assert.Equal(t, []string{"ada@mergington.edu", "grace@mergington.edu"}, robotics.Participants)
	chess, _ := cat.Find("Chess Club")
	assert.Equal(t, 14, chess.MaxParticipants)
	assert.NotEmpty(t, cat.LastUpdated)
}

func TestAdd_Duplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.json")
	var out bytes.Buffer
	require.NoError(t, run("init", []string{"-path", path}, &out))

	err := run("add", []string{
		"-path", path, "-name", "Chess Club", "-description", "x", "-schedule", "y", "-max", "3",
	}, &out)
	assert.ErrorContains(t, err, "already exists")
}

func TestAdd_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.json")
	var out bytes.Buffer

	require.NoError(t, run("add", []string{
		"-path", path, "-name", "Robotics Club", "-description", "Robots", "-schedule", "Fridays", "-max", "8",
	}, &out))

	cat, err := catalog.LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, cat.Activities, 1)
}

func TestUpdate_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activities.json")
	var out bytes.Buffer
	require.NoError(t, run("init", []string{"-path", path}, &out))

	assert.ErrorContains(t,
		run("update", []string{"-path", path, "-name", "Knitting", "-field", "schedule", "-value", "x"}, &out),
		"not found")
	assert.ErrorContains(t,
		run("update", []string{"-path", path, "-name", "Chess Club", "-field", "colour", "-value", "x"}, &out),
		"unknown field")
	assert.Error(t,
		run("update", []string{"-path", path, "-name", "Chess Club", "-field", "max_participants", "-value", "0"}, &out))
}

func TestList_BuiltInSeed(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run("list", nil, &out))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 9)
	assert.True(t, bytes.HasPrefix(lines[0], []byte("Art Studio")))
}
