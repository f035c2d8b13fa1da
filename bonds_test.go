package mindless

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

//water plus a far away H2 molecule
func twoFragments(Te *testing.T) *Molecule {
	coords := mat.NewDense(5, 3, []float64{
		0.000, 0.000, 0.117,
		0.000, 0.757, -0.469,
		0.000, -0.757, -0.469,
		5.000, 5.000, 5.000,
		5.000, 5.000, 5.740,
	})
	M, err := NewMolecule("test", []int{7, 0, 0, 0, 0}, coords)
	require.NoError(Te, err)
	return M
}

func TestFragments(Te *testing.T) {
	M := twoFragments(Te)
	frags := Fragments(M, 1.25)
	require.Len(Te, frags, 2)
	assert.Equal(Te, []int{0, 1, 2}, frags[0])
	assert.Equal(Te, []int{3, 4}, frags[1])

	sub := M.Sub(frags[0])
	assert.Equal(Te, "H2O1", sub.Formula())
	assert.Len(Te, Fragments(sub, 1.25), 1)
}

func TestClashes(Te *testing.T) {
	M := twoFragments(Te)
	_, clash := Clashes(M, 0.5)
	assert.False(Te, clash)
	pair, clash := Clashes(M, 0.8)
	assert.True(Te, clash)
	assert.Equal(Te, [2]int{3, 4}, pair)
	assert.True(Te, DistancesOK(M, 0.8))
	assert.False(Te, DistancesOK(M, 2.0))
}

func TestXYZIO(Te *testing.T) {
	M := twoFragments(Te)
	M.SetEnergy(-5.07)
	var buf bytes.Buffer
	require.NoError(Te, XYZWrite(&buf, M))
	N, err := XYZRead(&buf)
	require.NoError(Te, err)
	assert.Equal(Te, M.Atoms, N.Atoms)
	assert.Equal(Te, "test", N.Name)
	assert.True(Te, mat.EqualApprox(M.Coords, N.Coords, 1e-6))
}

func TestMoleculeCopy(Te *testing.T) {
	M := twoFragments(Te)
	M.Charge = 1
	N := M.Copy()
	N.Coords.Set(0, 0, 10)
	N.Atoms[0] = 5
	assert.Equal(Te, 0.0, M.Coords.At(0, 0))
	assert.Equal(Te, 7, M.Atoms[0])
	assert.Equal(Te, 1, N.Charge)
	assert.Equal(Te, 12, M.Electrons())
}
