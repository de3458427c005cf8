// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ordination

import (
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/mds"

	"github.com/pdiddy/ordination-engine/internal/comm"
	"github.com/pdiddy/ordination-engine/internal/dissim"
	"github.com/pdiddy/ordination-engine/pkg/types"
)

// runNMDS searches for a minimal-stress non-metric embedding of the table's
// dissimilarity matrix. Each restart refines one starting configuration by
// iterated monotone regression and Guttman updates; the first start is the
// metric (Torgerson) scaling of the matrix via gonum's stat/mds, the rest
// are random. Restarts run concurrently; only the best stress survives, so
// their completion order is irrelevant. A high final stress is still a
// valid result, flagged only by the reported value.
func runNMDS(t *comm.Table, cfg types.OrdinationConfig, w io.Writer) (*types.Result, error) {
	dm, err := dissim.Compute(t, cfg.Distance)
	if err != nil {
		return nil, err
	}
	distance := cfg.Distance
	if distance == "" {
		distance = types.DistanceBray
	}

	n := t.NSites()
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = DefaultDimensions
	}
	if dims > maxRank(n) {
		dims = maxRank(n)
	}
	restarts := cfg.Restarts
	if restarts <= 0 {
		restarts = DefaultRestarts
	}
	maxIter := cfg.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	tol := cfg.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}

	type candidate struct {
		restart    int
		stress     float64
		iterations int
		converged  bool
		config     [][]float64
	}

	ch := make(chan candidate, restarts)
	var wg sync.WaitGroup
	for i := 0; i < restarts; i++ {
		wg.Add(1)
		go func(restart int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(cfg.Seed + int64(restart)))
			var x [][]float64
			if restart == 0 {
				x = metricStart(dm, dims, rng)
			} else {
				x = randomStart(n, dims, dm.Max(), rng)
			}
			stress, iters, converged := refine(dm, x, maxIter, tol)
			ch <- candidate{restart: restart, stress: stress, iterations: iters, converged: converged, config: x}
		}(i)
	}
	go func() {
		wg.Wait()
		close(ch)
	}()

	results := make([]candidate, restarts)
	for c := range ch {
		results[c.restart] = c
	}

	best := 0
	for i := 1; i < restarts; i++ {
		if results[i].stress < results[best].stress {
			best = i
		}
	}
	for i, c := range results {
		marker := ""
		if i == best {
			marker = "  <- best"
		}
		fmt.Fprintf(w, "restart %2d/%d: stress %.6f (%d iterations)%s\n",
			i+1, restarts, c.stress, c.iterations, marker)
	}

	config := results[best].config
	principalRotate(config)
	siteScores := config

	return &types.Result{
		Method:        types.MethodNMDS,
		Distance:      distance,
		Axes:          dims,
		Sites:         append([]string(nil), t.Sites...),
		Species:       append([]string(nil), t.Species...),
		SiteScores:    siteScores,
		SpeciesScores: speciesWeightedAverages(t, siteScores, dims),
		Diagnostics: types.Diagnostics{
			Stress:     results[best].stress,
			Iterations: results[best].iterations,
			Converged:  results[best].converged,
			Restarts:   restarts,
		},
	}, nil
}

// metricStart seeds a configuration from the classical (Torgerson) scaling
// of the dissimilarity matrix. Axes beyond the metric solution's positive
// rank are filled with small random jitter.
func metricStart(dm *dissim.Matrix, dims int, rng *rand.Rand) [][]float64 {
	n := dm.Len()
	var coords mat.Dense
	k, _ := mds.TorgersonScaling(&coords, nil, dm.Sym())
	if k > dims {
		k = dims
	}

	x := make([][]float64, n)
	for i := range x {
		row := make([]float64, dims)
		for d := 0; d < k; d++ {
			row[d] = coords.At(i, d)
		}
		for d := k; d < dims; d++ {
			row[d] = (rng.Float64() - 0.5) * 1e-3
		}
		x[i] = row
	}
	if k == 0 {
		return randomStart(n, dims, dm.Max(), rng)
	}
	return x
}

// randomStart spreads points uniformly, scaled by the matrix's largest
// dissimilarity so the first Guttman steps are well conditioned.
func randomStart(n, dims int, spread float64, rng *rand.Rand) [][]float64 {
	if spread <= 0 {
		spread = 1
	}
	x := make([][]float64, n)
	for i := range x {
		row := make([]float64, dims)
		for d := range row {
			row[d] = (rng.Float64() - 0.5) * spread
		}
		x[i] = row
	}
	return x
}

// pairOrder indexes one site pair for monotone regression.
type pairOrder struct {
	i, j int
	diss float64
	dist float64
}

// refine iterates monotone regression and the Guttman transform on x until
// the stress change drops below tol or maxIter is reached. It returns the
// final Kruskal stress-1, the iteration count, and whether it converged.
// x is updated in place.
func refine(dm *dissim.Matrix, x [][]float64, maxIter int, tol float64) (float64, int, bool) {
	n := dm.Len()
	dims := len(x[0])

	pairs := make([]pairOrder, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pairOrder{i: i, j: j, diss: dm.At(i, j)})
		}
	}

	dist := newSquare(n)
	dhat := newSquare(n)
	stress := math.Inf(1)

	for iter := 1; iter <= maxIter; iter++ {
		configDistances(x, dist)

		// Monotone (isotonic) regression of distances against the
		// dissimilarity ranks. Kruskal's primary approach to ties: within
		// equal dissimilarities, order by current distance so ties impose
		// no constraint.
		for p := range pairs {
			pairs[p].dist = dist[pairs[p].i][pairs[p].j]
		}
		sort.Slice(pairs, func(a, b int) bool {
			if pairs[a].diss != pairs[b].diss {
				return pairs[a].diss < pairs[b].diss
			}
			return pairs[a].dist < pairs[b].dist
		})

		ys := make([]float64, len(pairs))
		for p, pr := range pairs {
			ys[p] = pr.dist
		}
		fit := pava(ys)
		for p, pr := range pairs {
			dhat[pr.i][pr.j] = fit[p]
			dhat[pr.j][pr.i] = fit[p]
		}

		// Scale fitted distances to the configuration's scale; stress-1 is
		// invariant to this but the Guttman step is not.
		var sumD2, sumH2 float64
		for _, pr := range pairs {
			sumD2 += pr.dist * pr.dist
			h := dhat[pr.i][pr.j]
			sumH2 += h * h
		}
		// A collapsed configuration has no usable gradient; report it as a
		// failed start so it can never win the restart search.
		if sumD2 == 0 || sumH2 == 0 {
			return math.Inf(1), iter, false
		}
		scale := math.Sqrt(sumD2 / sumH2)
		var raw float64
		for _, pr := range pairs {
			dhat[pr.i][pr.j] *= scale
			dhat[pr.j][pr.i] = dhat[pr.i][pr.j]
			r := pr.dist - dhat[pr.i][pr.j]
			raw += r * r
		}
		next := math.Sqrt(raw / sumD2)

		if math.Abs(stress-next) < tol {
			return next, iter, true
		}
		stress = next

		guttman(x, dist, dhat, dims)
	}

	return stress, maxIter, false
}

// guttman applies one majorization step: x <- (1/n) B(x) x.
func guttman(x [][]float64, dist, dhat [][]float64, dims int) {
	n := len(x)
	updated := make([][]float64, n)
	for i := range updated {
		updated[i] = make([]float64, dims)
	}

	for i := 0; i < n; i++ {
		var bii float64
		for j := 0; j < n; j++ {
			if j == i || dist[i][j] == 0 {
				continue
			}
			bij := -dhat[i][j] / dist[i][j]
			bii -= bij
			for d := 0; d < dims; d++ {
				updated[i][d] += bij * x[j][d]
			}
		}
		for d := 0; d < dims; d++ {
			updated[i][d] += bii * x[i][d]
			updated[i][d] /= float64(n)
		}
	}

	for i := range x {
		copy(x[i], updated[i])
	}
}

// pava fits the best non-decreasing sequence to ys under squared error
// (pool adjacent violators).
func pava(ys []float64) []float64 {
	type block struct {
		sum float64
		n   int
	}
	blocks := make([]block, 0, len(ys))
	for _, y := range ys {
		blocks = append(blocks, block{sum: y, n: 1})
		for len(blocks) > 1 {
			last := blocks[len(blocks)-1]
			prev := blocks[len(blocks)-2]
			if prev.sum/float64(prev.n) <= last.sum/float64(last.n) {
				break
			}
			blocks = blocks[:len(blocks)-2]
			blocks = append(blocks, block{sum: prev.sum + last.sum, n: prev.n + last.n})
		}
	}

	fit := make([]float64, 0, len(ys))
	for _, b := range blocks {
		mean := b.sum / float64(b.n)
		for k := 0; k < b.n; k++ {
			fit = append(fit, mean)
		}
	}
	return fit
}

// configDistances fills dist with the Euclidean distances between the rows
// of x.
func configDistances(x [][]float64, dist [][]float64) {
	n := len(x)
	for i := 0; i < n; i++ {
		dist[i][i] = 0
		for j := i + 1; j < n; j++ {
			ss := 0.0
			for d := range x[i] {
				diff := x[i][d] - x[j][d]
				ss += diff * diff
			}
			v := math.Sqrt(ss)
			dist[i][j] = v
			dist[j][i] = v
		}
	}
}

// principalRotate centers the configuration and rotates it so the first
// axis carries the greatest spread, giving NMDS axes a stable orientation
// across runs that find the same configuration.
func principalRotate(x [][]float64) {
	n := len(x)
	if n == 0 {
		return
	}
	dims := len(x[0])

	means := make([]float64, dims)
	for _, row := range x {
		for d, v := range row {
			means[d] += v
		}
	}
	for d := range means {
		means[d] /= float64(n)
	}
	for _, row := range x {
		for d := range row {
			row[d] -= means[d]
		}
	}
	if dims < 2 {
		return
	}

	// Jacobi sweeps over axis pairs; dims is 2 or 3 in practice so a few
	// passes zero the cross-covariances.
	for sweep := 0; sweep < 20; sweep++ {
		rotated := false
		for a := 0; a < dims; a++ {
			for b := a + 1; b < dims; b++ {
				var saa, sbb, sab float64
				for _, row := range x {
					saa += row[a] * row[a]
					sbb += row[b] * row[b]
					sab += row[a] * row[b]
				}
				if math.Abs(sab) < 1e-12*(saa+sbb+1e-300) {
					continue
				}
				theta := 0.5 * math.Atan2(2*sab, saa-sbb)
				cos, sin := math.Cos(theta), math.Sin(theta)
				for _, row := range x {
					ra := cos*row[a] + sin*row[b]
					rb := -sin*row[a] + cos*row[b]
					row[a], row[b] = ra, rb
				}
				rotated = true
			}
		}
		if !rotated {
			break
		}
	}

	// Order axes by decreasing spread after the sweeps.
	variances := make([]float64, dims)
	for _, row := range x {
		for d, v := range row {
			variances[d] += v * v
		}
	}
	order := make([]int, dims)
	for d := range order {
		order[d] = d
	}
	sort.SliceStable(order, func(a, b int) bool { return variances[order[a]] > variances[order[b]] })
	for _, row := range x {
		tmp := make([]float64, dims)
		for d, src := range order {
			tmp[d] = row[src]
		}
		copy(row, tmp)
	}
}

func newSquare(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}
