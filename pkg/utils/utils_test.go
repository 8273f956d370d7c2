package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

type sampleConfig struct {
	Ticker   string `json:"ticker" jsonschema:"description=Symbol to export"`
	Retries  int    `json:"retries,omitempty" jsonschema:"minimum=0,default=0"`
	NoHeader *bool  `json:"noHeader,omitempty" jsonschema:"default=true"`
}

type nestedConfig struct {
	ID     string       `json:"id"`
	Export sampleConfig `json:"export"`
}

func (suite *UtilsTestSuite) decode(schema string) map[string]any {
	var result map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &result))

	return result
}

func (suite *UtilsTestSuite) TestGetSchemaFromConfigInlinesDefinitions() {
	schema, err := GetSchemaFromConfig(&sampleConfig{})
	suite.Require().NoError(err)

	result := suite.decode(schema)
	suite.Contains(result, "$schema")
	suite.NotContains(result, "$ref")
	suite.NotContains(result, "$defs")
	suite.Equal("object", result["type"])
	suite.Equal([]any{"ticker"}, result["required"])
}

func (suite *UtilsTestSuite) TestGetSchemaFromConfigNested() {
	schema, err := GetSchemaFromConfig(nestedConfig{})
	suite.Require().NoError(err)

	result := suite.decode(schema)
	properties, ok := result["properties"].(map[string]any)
	suite.Require().True(ok)

	export, ok := properties["export"].(map[string]any)
	suite.Require().True(ok)
	suite.Equal("object", export["type"])
	suite.Contains(export, "properties")
}

func (suite *UtilsTestSuite) TestGetSchemaFromConfigPrimitiveTypes() {
	for _, value := range []any{"string", 42, true, 3.14} {
		schema, err := GetSchemaFromConfig(value)
		suite.NoError(err)
		suite.NotEmpty(schema)
	}
}
