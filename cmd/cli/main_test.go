package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyCSV = ",IID,Y3SEXE,Y3CERT\n0,1,1,10\n1,2,1,9\n2,3,2,10\n3,4,2,99\n"

const trendCSV = "date,vague,INTEURST,INDPART\n2023-06-20,Vague 1,52.1,41.0\n2024-04-15,Vague 6,56.9,44.9\n"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCrossTabCommand(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "survey.csv", surveyCSV)

	out, err := run(t, "crosstab", "--file", file)
	require.NoError(t, err)

	assert.Contains(t, out, "Homme")
	assert.Contains(t, out, "Femme")
	assert.Contains(t, out, "50.0%")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "3 rows kept, 1 excluded")
}

func TestCrossTabCommand_UnknownColumn(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "survey.csv", surveyCSV)

	_, err := run(t, "crosstab", "--file", file, "--group", "NOPE")
	require.Error(t, err)
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "survey.csv", surveyCSV)
	outDir := filepath.Join(dir, "reports")

	out, err := run(t, "report", "--file", file, "--out", outDir, "--format", "svg", "--xlsx")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Report "))

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	var exts []string
	for _, e := range entries {
		exts = append(exts, filepath.Ext(e.Name()))
	}
	assert.ElementsMatch(t, []string{".svg", ".json", ".xlsx"}, exts)
}

func TestReportCommand_BadFormat(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "survey.csv", surveyCSV)

	_, err := run(t, "report", "--file", file, "--out", dir, "--format", "gif")
	require.Error(t, err)
}

func TestTrendCommand(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "onglet_2.csv", trendCSV)
	out := filepath.Join(dir, "charts", "indpart.png")

	stdout, err := run(t, "trend", "INDPART", "--file", file, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestTrendCommand_UnknownSeries(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "onglet_2.csv", trendCSV)

	_, err := run(t, "trend", "Y3CERT", "--file", file, "--out", filepath.Join(dir, "x.png"))
	require.Error(t, err)
}
