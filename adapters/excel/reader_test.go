package excel

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "group.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadGroup_CSV(t *testing.T) {
	path := writeCSV(t, "1.5,2.0,3.5\n4.0,5.5,6.0\n")

	g, err := NewGroupReader(path).ReadGroup("")
	require.NoError(t, err)
	assert.Equal(t, []int{3}, g.Shape)
	require.Equal(t, 2, g.Len())
	assert.Equal(t, []float64{1.5, 2.0, 3.5}, g.Obs[0])
	assert.Equal(t, []float64{4.0, 5.5, 6.0}, g.Obs[1])
}

func TestReadGroup_CSVHeaderSkipped(t *testing.T) {
	path := writeCSV(t, "sensor_a,sensor_b\n1,2\n3,4\n")

	g, err := NewGroupReader(path).ReadGroup("")
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []float64{1, 2}, g.Obs[0])
}

func TestReadGroup_CSVNonNumericCellBecomesNaN(t *testing.T) {
	path := writeCSV(t, "1,2\n3,n/a\n")

	g, err := NewGroupReader(path).ReadGroup("")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(g.Obs[1][1]))
}

func TestReadGroup_CSVRaggedRowRejected(t *testing.T) {
	path := writeCSV(t, "1,2,3\n4,5\n")

	_, err := NewGroupReader(path).ReadGroup("")
	assert.Error(t, err)
}

func TestReadGroup_MissingFile(t *testing.T) {
	_, err := NewGroupReader("/nonexistent/data.csv").ReadGroup("")
	assert.Error(t, err)
}

func TestReadGroup_Excel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "group.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"loc_0", "loc_1"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{1.5, 2.5}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{3.5, 4.5}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	g, err := NewGroupReader(path).ReadGroup("")
	require.NoError(t, err)
	assert.Equal(t, []int{2}, g.Shape)
	require.Equal(t, 2, g.Len())
	assert.Equal(t, []float64{1.5, 2.5}, g.Obs[0])
	assert.Equal(t, []float64{3.5, 4.5}, g.Obs[1])
}

func TestReadGroup_SourceOverridesConstructorPath(t *testing.T) {
	path := writeCSV(t, "1,2\n3,4\n")

	g, err := NewGroupReader("bogus.xlsx").ReadGroup(path)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Len())
}
