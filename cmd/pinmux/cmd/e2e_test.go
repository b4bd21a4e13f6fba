package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceMux/pkg/network"
)

const testdata = "../../../testdata"

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestNetworksE2E(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
		wantAbsent  []string
	}{
		{
			name: "all groups",
			args: []string{"networks", "-i", testdata + "/ast2400.txt"},
			wantContain: []string{
				"Common bits: [(SCU80[0], 2)]",
				"('GPIOA', 'MAC1LINK'): {}",
				"Common bits: [(SCU70[0], 2)]",
				"('GPIOB', 'LPCRST, SALT2'): {SCU80[9]}",
			},
			wantAbsent: []string{"TIMER1"},
		},
		{
			name: "filter file",
			args: []string{"networks", "-i", testdata + "/ast2400.txt", testdata + "/groups.txt"},
			wantContain: []string{
				"Common bits: [(SCU70[0], 2)]",
				"('ROM', 'VPIB0, VPIOB0'): {}",
			},
			wantAbsent: []string{"MAC1LINK"},
		},
		{
			name:        "singletons",
			args:        []string{"networks", "--all", "-i", testdata + "/ast2400.txt"},
			wantContain: []string{"('GPIOA', 'TIMER1'): {}", "Common bits: [(SCU80[16], 1)]"},
		},
		{
			name:        "sort by default function",
			args:        []string{"networks", "--filter-by", "default", "-i", testdata + "/ast2400.txt"},
			wantContain: []string{"('GPIOA1', 'MAC2LINK'): {}"},
		},
		{
			name:        "sexp",
			args:        []string{"networks", "--format", "sexp", "-i", testdata + "/ast2400.txt"},
			wantContain: []string{`(pinmux (version "1.0")`, `(bit "SCU70[0]" 2)`},
		},
		{
			name:    "malformed line",
			args:    []string{"networks", "-i", testdata + "/malformed.txt"},
			wantErr: true,
		},
		{
			name:    "bad format",
			args:    []string{"networks", "--format", "xml", "-i", testdata + "/ast2400.txt"},
			wantErr: true,
		},
		{
			name:    "missing filter file",
			args:    []string{"networks", "-i", testdata + "/ast2400.txt", testdata + "/absent.txt"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", tt.args...)
			if tt.wantErr {
				require.Error(t, err)
				assert.Empty(t, out, "no partial report on failure")
				return
			}
			require.NoError(t, err)

			for _, want := range tt.wantContain {
				assert.Contains(t, out, want)
			}
			for _, absent := range tt.wantAbsent {
				assert.NotContains(t, out, absent)
			}
		})
	}
}

func TestNetworksMalformedNamesPin(t *testing.T) {
	out, _, err := execute(t, "", "networks", "-i", testdata+"/malformed.txt")
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, err.Error(), "F7")
	assert.Contains(t, err.Error(), "F7 GPIOC0 GPIOC")
}

func TestNetworksStdin(t *testing.T) {
	stdin := "A1 GPIOC0 SIG1 SCU80[0]=1 & SCU84[3]=1 GPIOC\nA2 GPIOC1 SIG2 SCU80[0]=1 GPIOC\n"

	out, _, err := execute(t, stdin, "networks")
	require.NoError(t, err)
	assert.Equal(t, "Common bits: [(SCU80[0], 2)]\n('GPIOC', 'SIG1'): {SCU84[3]}\n('GPIOC', 'SIG2'): {}\n\n", out)
}

func TestNetworksConfigFile(t *testing.T) {
	out, _, err := execute(t, "", "networks", "-c", testdata+"/run.yaml", "-i", testdata+"/ast2400.txt")
	require.NoError(t, err)

	var rep network.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, network.ReportVersion, rep.Version)
	assert.Equal(t, 2, rep.NetworkCount)
	for _, net := range rep.Networks {
		for _, m := range net.Members {
			assert.Contains(t, []string{"GPIOB", "ROM"}, m.Key)
		}
	}

	// Flags override the file
	out, _, err = execute(t, "", "networks", "-c", testdata+"/run.yaml", "--format", "text", "-i", testdata+"/ast2400.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Common bits: "))
}

func TestNetworksVerbose(t *testing.T) {
	_, errOut, err := execute(t, "", "networks", "-v", "-i", testdata+"/ast2400.txt")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Parsed 6 pin(s)")
	assert.Contains(t, errOut, "component=network")
}

func TestPinsE2E(t *testing.T) {
	out, _, err := execute(t, "", "pins", "-i", testdata+"/ast2400.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Pins: 6 total")
	assert.Contains(t, out, "high SALT2: (SCU80[9]=1 & SCU70[0]=0)")
	assert.Contains(t, out, "low LPCRST: SCU80[9]=0")

	_, _, err = execute(t, "", "pins", "-i", testdata+"/malformed.txt")
	assert.Error(t, err)
}

func TestReflowE2E(t *testing.T) {
	out, _, err := execute(t, "", "reflow", "-i", testdata+"/datasheet.txt")
	require.NoError(t, err)
	assert.Equal(t, "A1, GPIOA0, IO, General purpose, Input\n"+
		"B2, GPIOA1, IO, MAC link status, output\n"+
		"C3, GPIOA2, IO, Timer, in/out\n", out)
}

func TestDescriptorsE2E(t *testing.T) {
	out, _, err := execute(t, "", "descriptors", "-i", testdata+"/ast2400.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "SCU80[0]: [('GPIOA', 'MAC1LINK'), ('GPIOA', 'MAC2LINK')]\n"))
	assert.Contains(t, out, "SCU70[0]: [('GPIOB', 'SALT1'), ('GPIOB', 'SALT2')]\n")
	assert.Contains(t, out, "SCU90[5:4]: [('ROM', 'VPIB0')]\n")

	out, _, err = execute(t, "", "descriptors", "-i", testdata+"/ast2400.txt", testdata+"/groups.txt")
	require.NoError(t, err)
	assert.NotContains(t, out, "MAC1LINK")
	assert.True(t, strings.HasPrefix(out, "SCU80[8]: [('GPIOB', 'SALT1')]\n"))

	out, _, err = execute(t, "", "descriptors", "-i", testdata+"/malformed.txt")
	require.Error(t, err)
	assert.Empty(t, out)
}
