package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/rmera/mindless"
	"github.com/rmera/mindless/config"
	"github.com/rmera/mindless/qm"
)

//chainEngine "optimizes" any molecule into a straight chain with 0.6 A
//between neighbors, which is always a single fragment with no clashes.
type chainEngine struct {
	optCalls atomic.Int32
	fail     bool
}

func (c *chainEngine) Name() string { return "chain" }

func (c *chainEngine) Optimize(mol *mindless.Molecule, maxCycles int) (*mindless.Molecule, error) {
	c.optCalls.Add(1)
	if c.fail {
		return nil, qm.ErrNotConverged
	}
	ret := mol.Copy()
	ret.Coords = mat.NewDense(mol.Len(), 3, nil)
	for i := 0; i < mol.Len(); i++ {
		ret.Coords.Set(i, 0, 0.6*float64(i))
	}
	ret.SetEnergy(-float64(mol.Len()))
	return ret, nil
}

func (c *chainEngine) SinglePoint(mol *mindless.Molecule) (float64, error) {
	return -1, nil
}

func (c *chainEngine) CheckGap(mol *mindless.Molecule, threshold float64) (bool, error) {
	return true, nil
}

//criticalError mimics an engine that disappeared during the run.
type criticalError struct{}

func (criticalError) Error() string                 { return "engine gone" }
func (criticalError) Decorate(deco string) []string { return nil }
func (criticalError) Critical() bool                { return true }

func testConfig() config.Config {
	c := config.Default()
	c.General.Verbosity = 0
	c.General.MaxCycles = 10
	c.General.Seed = 1
	c.Generate.ForbiddenElements = "57-71"
	return c
}

func fakeMolecule(name string) *mindless.Molecule {
	M, err := mindless.NewMolecule(name, []int{0, 0}, mat.NewDense(2, 3, []float64{0, 0, 0, 0, 0, 0.74}))
	if err != nil {
		panic(err)
	}
	return M
}

func TestStopSignalClaim(Te *testing.T) {
	var S StopSignal
	assert.False(Te, S.IsSet())
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if S.Claim() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(Te, int32(1), wins.Load())
	assert.True(Te, S.IsSet())
	assert.False(Te, S.Claim())
}

func TestLowestCycleWins(Te *testing.T) {
	cfg := testConfig()
	cfg.General.Parallel = 4
	release := make(chan struct{})
	cycle := func(ctx context.Context, target, cycle int, stop *StopSignal, verbosity int) (*mindless.Molecule, error) {
		switch cycle {
		case 7:
			defer close(release)
			return fakeMolecule("late_index_first"), nil
		case 3:
			<-release //finishes after cycle 7
			return fakeMolecule("early_index_last"), nil
		}
		return nil, nil
	}
	G, err := New(cfg, &chainEngine{}, nil, WithNumCPU(16), WithOutput(io.Discard), WithCycleFunc(cycle))
	require.NoError(Te, err)
	mols, err := G.Run(context.Background())
	require.NoError(Te, err)
	require.Len(Te, mols, 1)
	assert.Equal(Te, "early_index_last", mols[0].Name)
}

func TestExhausted(Te *testing.T) {
	cfg := testConfig()
	cfg.General.NumMolecules = 3
	var calls atomic.Int32
	cycle := func(ctx context.Context, target, cycle int, stop *StopSignal, verbosity int) (*mindless.Molecule, error) {
		calls.Add(1)
		if target == 0 && cycle == 2 {
			return fakeMolecule("first"), nil
		}
		return nil, nil
	}
	G, err := New(cfg, &chainEngine{}, nil, WithOutput(io.Discard), WithCycleFunc(cycle))
	require.NoError(Te, err)
	mols, err := G.Run(context.Background())
	assert.Nil(Te, mols)
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, ErrExhausted))
	var ex *ExhaustedError
	require.ErrorAs(Te, err, &ex)
	assert.Equal(Te, 1, ex.Target)
	assert.Equal(Te, 10, ex.Cycles)
	assert.Contains(Te, err.Error(), "molecule 2")
	//the third molecule is never attempted.
	assert.Equal(Te, int32(20), calls.Load())
}

func TestClampParallel(Te *testing.T) {
	count := func(log, msg string) int {
		n := 0
		for _, line := range strings.Split(log, "\n") {
			if strings.Contains(line, `"level":"warn"`) && strings.Contains(line, msg) {
				n++
			}
		}
		return n
	}
	const clamp = "more cores requested than available"
	const quiet = "parallel runs disable verbosity"

	cfg := testConfig()
	cfg.General.Parallel = 8
	var buf bytes.Buffer
	G, err := New(cfg, &chainEngine{}, nil, WithNumCPU(4), WithOutput(io.Discard),
		WithLogger(zerolog.New(&buf)))
	require.NoError(Te, err)
	assert.Equal(Te, 4, G.Cores())
	_, err = G.Run(context.Background())
	require.NoError(Te, err)
	assert.Equal(Te, 1, count(buf.String(), clamp))
	assert.Equal(Te, 0, count(buf.String(), quiet))

	buf.Reset()
	cfg.General.Verbosity = 2
	G, err = New(cfg, &chainEngine{}, nil, WithNumCPU(4), WithOutput(io.Discard),
		WithLogger(zerolog.New(&buf)))
	require.NoError(Te, err)
	assert.Equal(Te, 0, G.verbosity)
	assert.Equal(Te, 2, G.cfg.General.Verbosity)
	assert.Equal(Te, 1, count(buf.String(), clamp))
	assert.Equal(Te, 1, count(buf.String(), quiet))

	buf.Reset()
	cfg.General.Parallel = 2
	G, err = New(cfg, &chainEngine{}, nil, WithNumCPU(4), WithLogger(zerolog.New(&buf)))
	require.NoError(Te, err)
	assert.Equal(Te, 2, G.Cores())
	assert.Equal(Te, 0, count(buf.String(), clamp))
}

func TestRandomSeedLogged(Te *testing.T) {
	cfg := testConfig()
	cfg.General.Seed = 0
	var buf bytes.Buffer
	G, err := New(cfg, &chainEngine{}, nil, WithOutput(io.Discard), WithLogger(zerolog.New(&buf)))
	require.NoError(Te, err)
	var entry struct {
		Level string `json:"level"`
		Seed  int64  `json:"seed"`
	}
	require.NoError(Te, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(Te, "info", entry.Level)
	assert.Equal(Te, G.seed, entry.Seed)

	//the logged seed reproduces the run.
	first, err := G.Run(context.Background())
	require.NoError(Te, err)
	cfg.General.Seed = entry.Seed
	buf.Reset()
	G, err = New(cfg, &chainEngine{}, nil, WithOutput(io.Discard), WithLogger(zerolog.New(&buf)))
	require.NoError(Te, err)
	assert.Empty(Te, buf.String())
	again, err := G.Run(context.Background())
	require.NoError(Te, err)
	require.Len(Te, again, len(first))
	assert.Equal(Te, first[0].Name, again[0].Name)
	assert.Equal(Te, first[0].Atoms, again[0].Atoms)
}

func TestRunSequential(Te *testing.T) {
	cfg := testConfig()
	cfg.General.NumMolecules = 2
	eng := &chainEngine{}
	var out bytes.Buffer
	G, err := New(cfg, eng, nil, WithOutput(&out))
	require.NoError(Te, err)
	mols, err := G.Run(context.Background())
	require.NoError(Te, err)
	require.Len(Te, mols, 2)
	//the first cycle always succeeds, the others see the signal and stop.
	assert.Equal(Te, int32(2), eng.optCalls.Load())
	assert.Equal(Te, "Cycle... ✔\nCycle... ✔\n", out.String())
	assert.NotEqual(Te, mols[0].Name, mols[1].Name)
	for _, m := range mols {
		e, ok := m.Energy()
		assert.True(Te, ok)
		assert.Equal(Te, -float64(m.Len()), e)
		assert.Equal(Te, m.Electrons()%2 == 0, m.Charge%2 == 0)
	}

	//same seed, same molecules.
	G, err = New(cfg, &chainEngine{}, nil, WithOutput(io.Discard))
	require.NoError(Te, err)
	again, err := G.Run(context.Background())
	require.NoError(Te, err)
	assert.Equal(Te, mols[0].Name, again[0].Name)
	assert.Equal(Te, mols[1].Atoms, again[1].Atoms)
}

func TestRunVerbose(Te *testing.T) {
	cfg := testConfig()
	cfg.General.Verbosity = 2
	cfg.General.MaxCycles = 3
	var out bytes.Buffer
	G, err := New(cfg, &chainEngine{fail: true}, nil, WithOutput(&out))
	require.NoError(Te, err)
	_, err = G.Run(context.Background())
	require.ErrorIs(Te, err, ErrExhausted)
	s := out.String()
	assert.Contains(Te, s, "Running with 1 cores.")
	for _, line := range []string{"Cycle 1:", "Cycle 2:", "Cycle 3:", "Refinement failed for cycle 3."} {
		assert.Contains(Te, s, line)
	}
	assert.NotContains(Te, s, "✔")

	out.Reset()
	cfg.General.Verbosity = 1
	G, err = New(cfg, &chainEngine{}, nil, WithOutput(&out))
	require.NoError(Te, err)
	mols, err := G.Run(context.Background())
	require.NoError(Te, err)
	assert.Contains(Te, out.String(), "Optimized mindless molecule found in 1 cycles.")
	assert.Contains(Te, out.String(), "Sum formula: "+mols[0].Formula())
}

func TestPostprocessFailureLosesCycle(Te *testing.T) {
	cfg := testConfig()
	cfg.General.Postprocess = true
	cfg.General.MaxCycles = 4
	post := &chainEngine{fail: true}
	G, err := New(cfg, &chainEngine{}, post, WithOutput(io.Discard))
	require.NoError(Te, err)
	_, err = G.Run(context.Background())
	assert.ErrorIs(Te, err, ErrExhausted)
	assert.Equal(Te, int32(4), post.optCalls.Load())

	_, err = New(cfg, &chainEngine{}, nil)
	assert.Error(Te, err)
}

func TestCriticalErrorAborts(Te *testing.T) {
	cfg := testConfig()
	cfg.General.Parallel = 2
	cycle := func(ctx context.Context, target, cycle int, stop *StopSignal, verbosity int) (*mindless.Molecule, error) {
		if cycle == 0 {
			return nil, criticalError{}
		}
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
		return nil, nil
	}
	G, err := New(cfg, &chainEngine{}, nil, WithNumCPU(2), WithOutput(io.Discard), WithCycleFunc(cycle))
	require.NoError(Te, err)
	start := time.Now()
	_, err = G.Run(context.Background())
	require.Error(Te, err)
	assert.ErrorAs(Te, err, new(criticalError))
	assert.Less(Te, time.Since(start), 4*time.Second)
}

func TestMissingEngineAborts(Te *testing.T) {
	cfg := testConfig()
	cfg.Refine.PerturbOnFailure = true
	xtb := qm.NewXTB(filepath.Join(Te.TempDir(), "nonexistent", "xtb"), cfg.XTB)
	G, err := New(cfg, xtb, nil, WithOutput(io.Discard))
	require.NoError(Te, err)
	_, err = G.Run(context.Background())
	require.Error(Te, err)
	assert.ErrorIs(Te, err, qm.ErrEngineNotFound)
	assert.False(Te, errors.Is(err, ErrExhausted))
	var qerr *qm.Error
	require.ErrorAs(Te, err, &qerr)
	assert.True(Te, qerr.Critical())
}

func TestLostCritical(Te *testing.T) {
	G, err := New(testConfig(), &chainEngine{}, nil, WithOutput(io.Discard))
	require.NoError(Te, err)
	assert.Error(Te, G.lost(criticalError{}, "Refinement", 0, 0))
	assert.NoError(Te, G.lost(qm.ErrNotConverged, "Refinement", 0, 0))
}

func TestCanceled(Te *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	eng := &chainEngine{}
	G, err := New(testConfig(), eng, nil, WithOutput(io.Discard))
	require.NoError(Te, err)
	_, err = G.Run(ctx)
	assert.ErrorIs(Te, err, context.Canceled)
	assert.Zero(Te, eng.optCalls.Load())
}

func TestSetup(Te *testing.T) {
	look := func(name string) (string, error) {
		if name == "xtb" {
			return "/usr/bin/xtb", nil
		}
		return "", errors.New("not found")
	}
	cfg := config.Default()
	ref, post, err := Setup(cfg, qm.WithLookPath(look))
	require.NoError(Te, err)
	assert.Equal(Te, "xtb", ref.Name())
	assert.Nil(Te, post)

	cfg.General.Postprocess = true
	_, _, err = Setup(cfg, qm.WithLookPath(look))
	assert.ErrorIs(Te, err, qm.ErrEngineNotFound)

	cfg.Postprocess.Engine = "xtb"
	ref, post, err = Setup(cfg, qm.WithLookPath(look))
	require.NoError(Te, err)
	assert.NotNil(Te, post)
}

func TestHeader(Te *testing.T) {
	h := Header("0.1.0")
	assert.Contains(Te, h, "mindlessgen v0.1.0")
	lines := strings.Split(h, "\n")
	for _, l := range lines {
		assert.Equal(Te, 82, len([]rune(l)), l)
	}
}
