// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package stepfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempStep(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "part.stp")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalHeader = `HEADER;
FILE_DESCRIPTION((''),'2;1');
ENDSEC;
`

func TestParser_SimpleAndComplexRecords(t *testing.T) {
	content := minimalHeader + `DATA;
#1=CARTESIAN_POINT('',(0.,0.,0.));
#2=DIRECTION('',(0.,0.,1.));
#3=(REPRESENTATION_ITEM('')
  STYLED_ITEM('',(#4),#5));
ENDSEC;
END-ISO-10303-21;
`
	path := writeTempStep(t, content)
	p := NewParser(nil)
	res, err := p.Parse(path)
	require.NoError(t, err)

	e1, ok := res.Graph.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "CARTESIAN_POINT", e1.Type)

	e3, ok := res.Graph.Lookup(3)
	require.True(t, ok)
	assert.Equal(t, "REPRESENTATION_ITEM", e3.Type, "complex record type is the first uppercase identifier")

	_, hasFour := e3.OutRefs[4]
	_, hasFive := e3.OutRefs[5]
	assert.True(t, hasFour)
	assert.True(t, hasFive)
	_, hasSelf := e3.OutRefs[3]
	assert.False(t, hasSelf, "self-id must be excluded from OutRefs")
}

func TestParser_MultiLineRecordJoined(t *testing.T) {
	content := minimalHeader + `DATA;
#1=ADVANCED_BREP_SHAPE_REPRESENTATION('',
  (#2,#3),
  #4);
ENDSEC;
END-ISO-10303-21;
`
	path := writeTempStep(t, content)
	res, err := NewParser(nil).Parse(path)
	require.NoError(t, err)

	e1, ok := res.Graph.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "ADVANCED_BREP_SHAPE_REPRESENTATION", e1.Type)
	for _, id := range []int{2, 3, 4} {
		_, ok := e1.OutRefs[id]
		assert.True(t, ok, "expected out_ref %d", id)
	}
}

func TestParser_MissingDataSectionIsFatal(t *testing.T) {
	path := writeTempStep(t, minimalHeader+"END-ISO-10303-21;\n")
	_, err := NewParser(nil).Parse(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA section not found")
}

func TestParser_MalformedRecordDropped(t *testing.T) {
	content := minimalHeader + `DATA;
#1=CARTESIAN_POINT('',(0.,0.,0.));
this is not a valid record at all
#5=lowercase_type(#1);
#2=DIRECTION('',(0.,0.,1.));
ENDSEC;
END-ISO-10303-21;
`
	path := writeTempStep(t, content)
	res, err := NewParser(nil).Parse(path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Graph.Len(), "only the two well-formed records should survive")

	_, ok := res.Graph.Lookup(5)
	assert.False(t, ok, "#5=lowercase_type(#1); starts with # but matches neither the "+
		"simple nor complex record regex (lower-case type) and must be dropped, not added")
}

func TestParser_StemDerivedFromFilename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "my_assembly.stp")
	require.NoError(t, os.WriteFile(path, []byte(minimalHeader+"DATA;\nENDSEC;\nEND-ISO-10303-21;\n"), 0o644))

	res, err := NewParser(nil).Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "my_assembly", res.Stem)
}
