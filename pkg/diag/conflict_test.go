package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instance-doctor/pkg/model"
)

func TestFindConflicts(t *testing.T) {
	c := healthySnapshot("C", 14331)
	off := healthySnapshot("OFF", 14330)
	off.Transports.TCPIP = false
	dyn := healthySnapshot("DYN", 14330)
	dyn.PrimaryPort = nil

	got := FindConflicts([]model.InstanceSnapshot{
		healthySnapshot("B", 14330),
		c,
		off,
		dyn,
		healthySnapshot("X", 1433),
		healthySnapshot("A", 14330),
		healthySnapshot("Y", 1433),
	})

	require.Len(t, got, 2)
	assert.Equal(t, model.PortConflict{Port: 1433, InstanceIDs: []string{"X", "Y"}}, got[0])
	assert.Equal(t, model.PortConflict{Port: 14330, InstanceIDs: []string{"B", "A"}}, got[1])
}

func TestFindConflicts_None(t *testing.T) {
	got := FindConflicts([]model.InstanceSnapshot{healthySnapshot("A", 1), healthySnapshot("B", 2)})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestConflictMap_Identity(t *testing.T) {
	// "SQL" is a substring of "SQL2"; lookups must not mix them up.
	conflicts := FindConflicts([]model.InstanceSnapshot{
		healthySnapshot("SQL2", 1500),
		healthySnapshot("SQL22", 1500),
		healthySnapshot("SQL", 1600),
	})
	m := ConflictMap(conflicts)

	assert.Len(t, m["SQL2"], 1)
	assert.Len(t, m["SQL22"], 1)
	assert.Empty(t, m["SQL"])
}

func TestPortConflictIssue(t *testing.T) {
	c := model.PortConflict{Port: 1500, InstanceIDs: []string{"A", "B", "C"}}
	issue := c.Issue()

	assert.Equal(t, model.CategoryPortConflict, issue.Category)
	assert.Equal(t, "port 1500 used by: A, B, C", issue.Message)
	assert.Equal(t, model.SeverityCritical, issue.Severity)
	assert.Equal(t, []string{"A", "C"}, c.Others("B"))
}
