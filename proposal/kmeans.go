package proposal

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// maxKMeansIter bounds the Lloyd iterations; live-point populations are
// small and converge in a handful of passes.
const maxKMeansIter = 25

// kmeans partitions vecs into k clusters and returns the per-point
// assignment and the final centroids.
//
// Seeding is k-means++-style: the first centroid is a uniform draw, each
// further centroid is drawn with probability proportional to squared
// distance from the nearest existing centroid. An emptied cluster is
// reseeded to the point farthest from its centroid.
//
// Contract: len(vecs) ≥ k ≥ 1; all vectors share one dimension.
//
// Complexity: O(iter·n·k·d).
func kmeans(vecs [][]float64, k int, rng *rand.Rand) (assign []int, centroids [][]float64, err error) {
	n := len(vecs)
	if k < 1 {
		return nil, nil, configErrf("kmeans: cluster count must be positive, got %d", k)
	}
	if n < k {
		return nil, nil, configErrf("kmeans: %d points cannot form %d clusters", n, k)
	}
	dim := len(vecs[0])

	centroids = seedCentroids(vecs, k, rng)
	assign = make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	for iter := 0; iter < maxKMeansIter; iter++ {
		changed := false

		// Assignment step.
		for i, v := range vecs {
			best, bestDist := 0, math.Inf(1)
			for c, cent := range centroids {
				d := floats.Distance(v, cent, 2)
				if d < bestDist {
					best, bestDist = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Update step: per-cluster, per-dimension mean.
		for c := range centroids {
			column := make([]float64, 0, n)
			for d := 0; d < dim; d++ {
				column = column[:0]
				for i, v := range vecs {
					if assign[i] == c {
						column = append(column, v[d])
					}
				}
				if len(column) > 0 {
					centroids[c][d] = stat.Mean(column, nil)
				}
			}
			// Reseed an emptied cluster to the farthest point overall.
			if countAssigned(assign, c) == 0 {
				centroids[c] = append([]float64(nil), vecs[farthestPoint(vecs, centroids)][:]...)
			}
		}
	}
	return assign, centroids, nil
}

// seedCentroids draws k initial centroids with squared-distance weighting.
func seedCentroids(vecs [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	first := rng.IntN(len(vecs))
	centroids = append(centroids, append([]float64(nil), vecs[first]...))

	dists := make([]float64, len(vecs))
	for len(centroids) < k {
		var total float64
		for i, v := range vecs {
			nearest := math.Inf(1)
			for _, c := range centroids {
				if d := floats.Distance(v, c, 2); d < nearest {
					nearest = d
				}
			}
			dists[i] = nearest * nearest
			total += dists[i]
		}
		idx := 0
		if total > 0 {
			u := rng.Float64() * total
			var cum float64
			for i, d := range dists {
				cum += d
				if u <= cum {
					idx = i
					break
				}
			}
		} else {
			idx = rng.IntN(len(vecs))
		}
		centroids = append(centroids, append([]float64(nil), vecs[idx]...))
	}
	return centroids
}

// countAssigned counts points assigned to cluster c.
func countAssigned(assign []int, c int) int {
	var n int
	for _, a := range assign {
		if a == c {
			n++
		}
	}
	return n
}

// farthestPoint returns the index of the point farthest from its nearest
// centroid.
func farthestPoint(vecs [][]float64, centroids [][]float64) int {
	best, bestDist := 0, -1.0
	for i, v := range vecs {
		nearest := math.Inf(1)
		for _, c := range centroids {
			if d := floats.Distance(v, c, 2); d < nearest {
				nearest = d
			}
		}
		if nearest > bestDist {
			best, bestDist = i, nearest
		}
	}
	return best
}
