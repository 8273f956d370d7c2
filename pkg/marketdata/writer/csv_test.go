package writer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/ticker-history/internal/types"
)

const expectedHeader = "Date,currency,Close,Open,High,Low,operated_amount,Volume,n_operations"

func sampleRecords() []types.PriceRecord {
	return []types.PriceRecord{
		{
			Date:     "2024-01-02T00:00:00",
			Currency: "USD",
			Close:    185.64,
			Open:     187.15,
			High:     188.44,
			Low:      183.89,
			Volume:   82488700,
		},
		{
			Date:     "2024-01-03T00:00:00",
			Currency: "USD",
			Close:    184.25,
			Open:     184.22,
			High:     185.88,
			Low:      183.43,
			Volume:   58414500,
		},
	}
}

type CSVWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestCSVWriterSuite(t *testing.T) {
	suite.Run(t, new(CSVWriterTestSuite))
}

func (suite *CSVWriterTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func (suite *CSVWriterTestSuite) writeAll(path string, includeHeader bool, records []types.PriceRecord) string {
	w := NewCSVWriter(path, includeHeader)
	suite.Require().NoError(w.Initialize())

	for _, r := range records {
		suite.Require().NoError(w.Write(r))
	}

	out, err := w.Finalize()
	suite.Require().NoError(err)
	suite.Require().NoError(w.Close())

	content, err := os.ReadFile(out)
	suite.Require().NoError(err)

	return string(content)
}

func (suite *CSVWriterTestSuite) TestNewCSVWriter() {
	path := filepath.Join(suite.tempDir, "out.csv")
	w := NewCSVWriter(path, true)

	csvWriter, ok := w.(*CSVWriter)
	suite.True(ok)
	suite.Equal(path, csvWriter.GetOutputPath())
	suite.True(csvWriter.includeHeader)
}

func (suite *CSVWriterTestSuite) TestWriteWithoutInitialize() {
	w := NewCSVWriter(filepath.Join(suite.tempDir, "out.csv"), true)

	err := w.Write(sampleRecords()[0])
	suite.Error(err)
	suite.Contains(err.Error(), "not initialized")

	_, err = w.Finalize()
	suite.Error(err)
}

func (suite *CSVWriterTestSuite) TestWithoutHeader() {
	content := suite.writeAll(filepath.Join(suite.tempDir, "no_header.csv"), false, sampleRecords())

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	suite.Len(lines, 2)
	suite.Equal("2024-01-02T00:00:00,USD,185.64,187.15,188.44,183.89,,82488700,", lines[0])
	suite.Equal("2024-01-03T00:00:00,USD,184.25,184.22,185.88,183.43,,58414500,", lines[1])
}

func (suite *CSVWriterTestSuite) TestWithHeader() {
	content := suite.writeAll(filepath.Join(suite.tempDir, "header.csv"), true, sampleRecords())

	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	suite.Len(lines, 3)
	suite.Equal(expectedHeader, lines[0])
}

func (suite *CSVWriterTestSuite) TestZeroFiller() {
	records := sampleRecords()[:1]
	records[0].OperatedAmount = types.FillerZero.Value()
	records[0].NOperations = types.FillerZero.Value()

	content := suite.writeAll(filepath.Join(suite.tempDir, "zero.csv"), false, records)
	suite.Equal("2024-01-02T00:00:00,USD,185.64,187.15,188.44,183.89,0,82488700,0\n", content)
}

func (suite *CSVWriterTestSuite) TestEmptyWithHeader() {
	content := suite.writeAll(filepath.Join(suite.tempDir, "empty_header.csv"), true, nil)
	suite.Equal(expectedHeader+"\n", content)
}

func (suite *CSVWriterTestSuite) TestEmptyWithoutHeader() {
	content := suite.writeAll(filepath.Join(suite.tempDir, "empty.csv"), false, nil)
	suite.Empty(content)
}

func (suite *CSVWriterTestSuite) TestOverwritesExistingFile() {
	path := filepath.Join(suite.tempDir, "existing.csv")
	suite.Require().NoError(os.WriteFile(path, []byte("stale,data\nmore,stale,rows\nand,more\n"), 0644))

	content := suite.writeAll(path, false, sampleRecords()[:1])
	suite.Equal("2024-01-02T00:00:00,USD,185.64,187.15,188.44,183.89,,82488700,\n", content)
}

func (suite *CSVWriterTestSuite) TestMissingParentDirectory() {
	w := NewCSVWriter(filepath.Join(suite.tempDir, "missing", "out.csv"), true)
	suite.Require().NoError(w.Initialize())
	suite.Require().NoError(w.Write(sampleRecords()[0]))

	_, err := w.Finalize()
	suite.Error(err)
	suite.Contains(err.Error(), "failed to create output file")
}

func (suite *CSVWriterTestSuite) TestRoundTrip() {
	path := filepath.Join(suite.tempDir, "roundtrip.csv")
	suite.writeAll(path, true, sampleRecords())

	file, err := os.Open(path)
	suite.Require().NoError(err)
	defer file.Close()

	var records []types.PriceRecord
	suite.Require().NoError(gocsv.UnmarshalFile(file, &records))
	suite.Equal(sampleRecords(), records)
}
