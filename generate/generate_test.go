package generate

import (
	"errors"
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/mindless"
	"github.com/rmera/mindless/config"
)

func TestMoleculeBounds(Te *testing.T) {
	cfg := config.Default().Generate
	cfg.MinNumAtoms, cfg.MaxNumAtoms = 4, 12
	cfg.ForbiddenElements = "57-71, 21-30"
	cfg.ElementComposition = "C:2-4, O:*-1"
	G, err := New(cfg, rand.New(rand.NewSource(42)))
	require.NoError(Te, err)

	name := regexp.MustCompile(`^mlm_[0-9a-f]{12}$`)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		mol, err := G.Molecule()
		require.NoError(Te, err)
		assert.GreaterOrEqual(Te, mol.Len(), 4)
		assert.LessOrEqual(Te, mol.Len(), 12)
		assert.NoError(Te, cfg.CheckComposition(mol.Composition()))
		assert.True(Te, mindless.DistancesOK(mol, cfg.ScaleMinimalDistance))
		assert.Regexp(Te, name, mol.Name)
		assert.False(Te, seen[mol.Name], "repeated name %s", mol.Name)
		seen[mol.Name] = true
		assert.Equal(Te, 0, mol.UHF)
		assert.Equal(Te, mol.Electrons()%2 == 0, mol.Charge%2 == 0, mol.Formula())
	}
}

func TestMoleculeSeeded(Te *testing.T) {
	cfg := config.Default().Generate
	gen := func() []*mindless.Molecule {
		G, err := New(cfg, rand.New(rand.NewSource(7)))
		require.NoError(Te, err)
		var mols []*mindless.Molecule
		for i := 0; i < 5; i++ {
			mol, err := G.Molecule()
			require.NoError(Te, err)
			mols = append(mols, mol)
		}
		return mols
	}
	a, b := gen(), gen()
	for i := range a {
		assert.Equal(Te, a[i].Name, b[i].Name)
		assert.Equal(Te, a[i].Atoms, b[i].Atoms)
		assert.Equal(Te, a[i].Charge, b[i].Charge)
		assert.Equal(Te, a[i].Coords.RawMatrix().Data, b[i].Coords.RawMatrix().Data)
	}
}

func TestExactComposition(Te *testing.T) {
	cfg := config.Default().Generate
	cfg.MinNumAtoms, cfg.MaxNumAtoms = 2, 10
	cfg.ElementComposition = "C:2-2, H:4-4"
	cfg.ForbiddenElements = "3-5, 7-*"
	G, err := New(cfg, rand.New(rand.NewSource(1)))
	require.NoError(Te, err)
	for i := 0; i < 20; i++ {
		mol, err := G.Molecule()
		require.NoError(Te, err)
		//only He is left once C and H are full.
		comp := mol.Composition()
		assert.Equal(Te, 2, comp[5])
		assert.Equal(Te, 4, comp[0])
		assert.Equal(Te, mol.Len()-6, comp[1])
	}
}

func TestUnsatisfiable(Te *testing.T) {
	cfg := config.Default().Generate
	cfg.MinNumAtoms, cfg.MaxNumAtoms = 5, 5
	cfg.ElementComposition = "H:*-2"
	cfg.ForbiddenElements = "2-*"
	G, err := New(cfg, rand.New(rand.NewSource(1)))
	require.NoError(Te, err)
	_, err = G.Molecule()
	assert.True(Te, errors.Is(err, ErrUnsatisfiable))

	_, err = New(config.Generate{ElementComposition: "Xx:1"}, nil)
	assert.Error(Te, err)
}

func TestLanthanides(Te *testing.T) {
	cfg := config.Default().Generate
	cfg.ElementComposition = "Gd:1-1"
	G, err := New(cfg, rand.New(rand.NewSource(3)))
	require.NoError(Te, err)
	for i := 0; i < 20; i++ {
		mol, err := G.Molecule()
		require.NoError(Te, err)
		uhf := 0
		for _, v := range mol.Atoms {
			if mindless.IsLanthanide(v) {
				uhf += mindless.LanthanideUHF(v)
			}
		}
		assert.Equal(Te, uhf, mol.UHF)
		assert.Contains(Te, []int{0, 1}, mol.Charge)
	}
}

func TestHydrogenWeight(Te *testing.T) {
	rng := rand.New(rand.NewSource(11))
	weights := []float64{HydrogenWeight, 1, 1, 1, 1}
	counts := make([]int, len(weights))
	for i := 0; i < 8000; i++ {
		counts[pick(weights, rng)]++
	}
	//H should come out about half the time.
	assert.InDelta(Te, 0.5, float64(counts[0])/8000, 0.05)
	for _, c := range counts[1:] {
		assert.InDelta(Te, 0.125, float64(c)/8000, 0.03)
	}
}
