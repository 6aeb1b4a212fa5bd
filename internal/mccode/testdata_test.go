package mccode

import (
	"os"
	"path/filepath"
	"testing"
)

const simFixture = `begin instrument: Test_instr
  File: /tmp/run/Test_instr
  Source: Test_instr.instr
  Parameters:  L
  Trace_enabled: yes
  Default_main: yes
  Embedded_runtime: yes
end instrument

begin simulation: /tmp/run
  Format: McCode with text headers
  URL: http://www.mccode.org
  Creator: McStas 3.4
  Instrument: Test_instr.instr
  Ncount: 1000000
  Trace: no
  Gravitation: no
  Seed: 1712345678
  Directory: /tmp/run
  Param: L=1.5
end simulation

begin data
  Date: Fri Mar  1 12:00:00 2024 (1709294400)
  type: array_1d(4)
  Source: Test_instr (Test_instr.instr)
  component: Emon
  position: 0 0 1
  title: Energy monitor
  Ncount: 1000000
  filename: Emon.dat
  statistics: X0=5.1; dX=2.3;
  signal: Min=0; Max=0.004; Mean=0.002;
  values: 0.008 0.0001 4000
  xvar: E
  yvar: (I,I_err)
  xlabel: Energy [meV]
  ylabel: Intensity
  xlimits: 0 10
  variables: E I I_err N
end data

begin data
  Date: Fri Mar  1 12:00:00 2024 (1709294400)
  type: array_2d(3, 2)
  Source: Test_instr (Test_instr.instr)
  component: PSD
  position: 0 0 2
  title: PSD monitor
  Ncount: 1000000
  filename: PSD.dat
  statistics: X0=0; dX=1; Y0=0; dY=1;
  signal: Min=0; Max=6; Mean=3;
  values: 21 0.5 60
  xvar: X
  yvar: Y
  xlabel: X position [cm]
  ylabel: Y position [cm]
  zvar: I
  zlabel: Signal per bin
  xylimits: -5 5 -2 2
  variables: I I_err N
end data

begin data
  Date: Fri Mar  1 12:00:00 2024 (1709294400)
  type: array_0d
  Source: Test_instr (Test_instr.instr)
  component: Counter
  position: 0 0 3
  title:  Single monitor Counter
  Ncount: 1000000
  statistics: None
  signal: None
  values: 3.5 0.2 120
end data
`

const emonFixture = `# Format: McCode with text headers
# URL: http://www.mccode.org
# Creator: McStas 3.4
# Instrument: Test_instr.instr
# Ncount: 1000000
# Trace: no
# Gravitation: no
# Seed: 1712345678
# Directory: /tmp/run
# Param: L=1.5
# Date: Fri Mar  1 12:00:00 2024 (1709294400)
# type: array_1d(4)
# Source: Test_instr (Test_instr.instr)
# component: Emon
# position: 0 0 1
# title: Energy monitor
# Ncount: 1000000
# filename: Emon.dat
# statistics: X0=5.1; dX=2.3;
# signal: Min=0; Max=0.004; Mean=0.002;
# values: 0.008 0.0001 4000
# xvar: E
# yvar: (I,I_err)
# xlabel: 'Energy [meV]'
# ylabel: 'Intensity'
# xlimits: 0 10
# variables: E I I_err N
1.25 0 0 0
3.75 0.001 2e-05 1000
6.25 0.004 5e-05 2000
8.75 0.003 4e-05 1000
`

const psdFixture = `# Format: McCode with text headers
# Instrument: Test_instr.instr
# type: array_2d(3, 2)
# component: PSD
# title: PSD monitor
# filename: PSD.dat
# values: 21 0.5 60
# xlabel: 'X position [cm]'
# ylabel: 'Y position [cm]'
# zlabel: 'Signal per bin'
# xylimits: -5 5 -2 2
# variables: I I_err N
# Data [PSD/PSD.dat] I:
1 2 3
4 5 6
# Errors [PSD/PSD.dat] I_err:
0.1 0.1 0.1
0.2 0.2 0.2
# Events [PSD/PSD.dat] N:
1 2 3
4 5 6
`

// writeRun lays out a result directory with the manifest and its monitors.
func writeRun(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"mccode.sim": simFixture,
		"Emon.dat":   emonFixture,
		"PSD.dat":    psdFixture,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
