package heads

import (
	"math"
	"math/rand"
)

// mlp is a small one-hidden-layer feed-forward network trained by
// full-batch gradient descent. Weight initialization comes from a seeded
// source and samples are never shuffled, so identical inputs and seed
// give bit-identical weights.
type mlp struct {
	task Task
	seed int64

	hidden       int
	learningRate float64
	epochs       int

	// w1[h][j]: input j -> hidden h. w2[h]: hidden h -> output.
	w1 [][]float64
	b1 []float64
	w2 []float64
	b2 float64
}

func newMLP(hyper map[string]float64, task Task, seed int64) *mlp {
	return &mlp{
		task:         task,
		seed:         seed,
		hidden:       int(hyperOr(hyper, "hidden", 4)),
		learningRate: hyperOr(hyper, "learning_rate", 0.05),
		epochs:       int(hyperOr(hyper, "epochs", 200)),
	}
}

func (m *mlp) Family() string { return "mlp" }

func (m *mlp) Fit(ds Dataset) error {
	if err := checkFit(ds); err != nil {
		return err
	}

	n := ds.Len()
	dim := len(ds.X[0])

	x := make([][]float64, n)
	for i, row := range ds.X {
		x[i] = sanitize(row)
	}

	m.initWeights(dim)

	hiddenOut := make([]float64, m.hidden)
	gradW2 := make([]float64, m.hidden)
	gradB1 := make([]float64, m.hidden)
	gradW1 := make([][]float64, m.hidden)
	for h := range gradW1 {
		gradW1[h] = make([]float64, dim)
	}

	scale := m.learningRate / float64(n)

	for epoch := 0; epoch < m.epochs; epoch++ {
		for h := range gradW2 {
			gradW2[h] = 0
			gradB1[h] = 0
			for j := range gradW1[h] {
				gradW1[h][j] = 0
			}
		}
		gradB2 := 0.0

		for i := 0; i < n; i++ {
			z := m.forward(x[i], hiddenOut)
			pred := m.predictTarget(z)

			// dLoss/dz is (pred - y) for both squared error with identity
			// output and log-loss with sigmoid output.
			delta := pred - ds.Y[i]

			gradB2 += delta
			for h := 0; h < m.hidden; h++ {
				gradW2[h] += delta * hiddenOut[h]
				// tanh'(a) = 1 - tanh(a)^2
				dh := delta * m.w2[h] * (1 - hiddenOut[h]*hiddenOut[h])
				gradB1[h] += dh
				for j := 0; j < dim; j++ {
					gradW1[h][j] += dh * x[i][j]
				}
			}
		}

		m.b2 -= scale * gradB2
		for h := 0; h < m.hidden; h++ {
			m.w2[h] -= scale * gradW2[h]
			m.b1[h] -= scale * gradB1[h]
			for j := 0; j < dim; j++ {
				m.w1[h][j] -= scale * gradW1[h][j]
			}
		}

		if math.IsNaN(m.b2) || math.IsInf(m.b2, 0) {
			return &InvalidScoreError{Round: epoch}
		}
	}

	return nil
}

func (m *mlp) Score(x []float64) float64 {
	clean := sanitize(x)
	hiddenOut := make([]float64, m.hidden)

	// Scoring a wider or narrower vector than trained on falls back to
	// the overlapping prefix; forward guards the index range.
	z := m.forward(clean, hiddenOut)
	return m.predictTarget(z)
}

func (m *mlp) forward(x []float64, hiddenOut []float64) float64 {
	z := m.b2
	for h := 0; h < m.hidden; h++ {
		a := m.b1[h]
		w := m.w1[h]
		for j := 0; j < len(w) && j < len(x); j++ {
			a += w[j] * x[j]
		}
		hiddenOut[h] = math.Tanh(a)
		z += m.w2[h] * hiddenOut[h]
	}
	return z
}

func (m *mlp) predictTarget(z float64) float64 {
	if m.task == Classification {
		return sigmoid(z)
	}
	return z
}

func (m *mlp) initWeights(dim int) {
	rng := rand.New(rand.NewSource(m.seed))
	limit := 1 / math.Sqrt(float64(dim))

	m.w1 = make([][]float64, m.hidden)
	m.b1 = make([]float64, m.hidden)
	m.w2 = make([]float64, m.hidden)
	m.b2 = 0

	for h := 0; h < m.hidden; h++ {
		m.w1[h] = make([]float64, dim)
		for j := range m.w1[h] {
			m.w1[h][j] = rng.Float64()*2*limit - limit
		}
		m.w2[h] = rng.Float64()*2*limit - limit
	}
}
