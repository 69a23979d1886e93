package version

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures Full and UserAgent carry the build version.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.Contains(t, Full(), Version)
	require.True(t, strings.HasPrefix(UserAgent(), Name+"/"))
	require.True(t, strings.HasSuffix(UserAgent(), Version))
}

// TestAttachCobraVersionCommand runs the attached subcommand and checks its output.
func TestAttachCobraVersionCommand(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: Name}
	AttachCobraVersionCommand(root)

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	require.Equal(t, Full()+"\n", out.String())
}
