package qm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/mindless/config"
)

const orcaRestricted = `
----------------
ORBITAL ENERGIES
----------------

  NO   OCC          E(Eh)            E(eV)
   0   2.0000     -18.937452      -515.3141
   1   2.0000      -0.937320       -25.5058
   2   2.0000      -0.485417       -13.2089
   3   2.0000      -0.320004        -8.7078
   4   2.0000      -0.244571        -6.6551
   5   0.0000       0.001200         0.0327
   6   0.0000       0.082290         2.2392

*Only the first 10 virtual orbitals were printed.

********************************
* MULLIKEN POPULATION ANALYSIS *
********************************
   5   0.0000       9.000000        99.0000
-------------------------   --------------------
FINAL SINGLE POINT ENERGY       -76.272217312000
-------------------------   --------------------

                             ****ORCA TERMINATED NORMALLY****
`

const orcaUnrestricted = `
----------------
ORBITAL ENERGIES
----------------
                 SPIN UP ORBITALS
  NO   OCC          E(Eh)            E(eV)
   0   1.0000      -0.500000       -13.6057
   1   0.0000       0.100000         2.7211

                 SPIN DOWN ORBITALS
  NO   OCC          E(Eh)            E(eV)
   0   1.0000      -0.400000       -10.8846
   1   0.0000       0.050000         1.3606

********************************
FINAL SINGLE POINT ENERGY        -0.499800000000
****ORCA TERMINATED NORMALLY****
`

func TestORCAInput(Te *testing.T) {
	o := NewORCA("orca", config.ORCA{Functional: "PBE", Basis: "def2-SVP", GridSize: 2, SCFCycles: 150})
	mol := water(Te)
	mol.Charge, mol.UHF = 1, 1
	inp := o.BuildInput(mol, true, 20)
	assert.Equal(Te, `! PBE def2-SVP
! DEFGRID2
! NoTRAH NoSOSCF SlowConv
! Opt
%scf
	MaxIter 150
end
%geom
	MaxIter 20
end
* xyzfile 1 2 input.xyz
`, inp)

	inp = o.BuildInput(mol, false, 20)
	assert.NotContains(Te, inp, "Opt")
	assert.NotContains(Te, inp, "%geom")
	inp = o.BuildInput(mol, true, 0)
	assert.NotContains(Te, inp, "%geom")
}

func TestORCAParse(Te *testing.T) {
	e, err := orcaEnergy(orcaRestricted)
	require.NoError(Te, err)
	assert.InDelta(Te, -76.272217312, e, 1e-9)

	gap, err := orcaGap(orcaRestricted)
	require.NoError(Te, err)
	assert.InDelta(Te, 0.0327+6.6551, gap, 1e-9)

	gap, err = orcaGap(orcaUnrestricted)
	require.NoError(Te, err)
	assert.InDelta(Te, 1.3606+10.8846, gap, 1e-9)

	_, err = orcaGap("no orbitals here")
	assert.Error(Te, err)
	_, err = orcaEnergy("****ORCA TERMINATED NORMALLY****")
	assert.Error(Te, err)
}

func TestORCACalculations(Te *testing.T) {
	run := &fakeRunner{script: func(args []string) (string, map[string]string, error) {
		return orcaRestricted, map[string]string{"molecule.xyz": waterOpt}, nil
	}}
	o := NewORCA("/opt/orca/orca", config.Default().ORCA, WithRunner(run))

	opt, err := o.Optimize(water(Te), 10)
	require.NoError(Te, err)
	e, ok := opt.Energy()
	assert.True(Te, ok)
	assert.InDelta(Te, -76.272217312, e, 1e-9)
	assert.InDelta(Te, 0.12, opt.Coords.At(0, 2), 1e-9)
	assert.Equal(Te, []string{"/opt/orca/orca", "molecule.inp"}, run.calls[0])
	assert.Contains(Te, run.inputs[0]["molecule.inp"], "! Opt")
	assert.Contains(Te, run.inputs[0], "input.xyz")

	ok, err = o.CheckGap(water(Te), 0.5)
	require.NoError(Te, err)
	assert.True(Te, ok)
	ok, err = o.CheckGap(water(Te), 7)
	require.NoError(Te, err)
	assert.False(Te, ok)

	unconverged := &fakeRunner{script: func(args []string) (string, map[string]string, error) {
		out := strings.Replace(orcaRestricted, "FINAL SINGLE", "The optimization did not converge\nFINAL SINGLE", 1)
		return out, map[string]string{"molecule.xyz": waterOpt}, nil
	}}
	o = NewORCA("orca", config.Default().ORCA, WithRunner(unconverged))
	_, err = o.Optimize(water(Te), 10)
	assert.ErrorIs(Te, err, ErrNotConverged)
	_, err = o.SinglePoint(water(Te))
	assert.NoError(Te, err)

	abnormal := &fakeRunner{script: func(args []string) (string, map[string]string, error) {
		return "ORCA finished by error termination in SCF", nil, nil
	}}
	o = NewORCA("orca", config.Default().ORCA, WithRunner(abnormal))
	_, err = o.SinglePoint(water(Te))
	assert.ErrorIs(Te, err, ErrNotConverged)
}
