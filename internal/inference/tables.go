package inference

import "go.ngs.io/tidegrid/internal/domain"

// Equilibrium amplitudes, in meters, of the constituents that can be
// inferred. The Sa amplitude is the gravitational term only.
var (
	diurnalAmplitudes = map[domain.Constituent]float64{
		domain.TwoQ1:  0.006638,
		domain.Sigma1: 0.008023,
		domain.Q1:     0.050184,
		domain.Rho1:   0.009540,
		domain.O1:     0.262163,
		domain.Tau1:   0.003430,
		domain.Beta1:  0.001941,
		domain.M1:     0.020604,
		domain.Chi1:   0.003925,
		domain.Pi1:    0.007125,
		domain.P1:     0.122008,
		domain.K1:     0.368731,
		domain.Psi1:   0.002929,
		domain.Phi1:   0.005247,
		domain.Theta1: 0.003966,
		domain.J1:     0.020618,
		domain.SO1:    0.003417,
		domain.OO1:    0.011293,
		domain.Ups1:   0.002157,
	}

	semidiurnalAmplitudes = map[domain.Constituent]float64{
		domain.Eps2:    0.004669,
		domain.TwoN2:   0.016011,
		domain.Mu2:     0.019316,
		domain.N2:      0.121006,
		domain.Nu2:     0.022983,
		domain.Gamma2:  0.001902,
		domain.Alpha2:  0.002178,
		domain.M2:      0.631931,
		domain.Beta2:   0.001921,
		domain.Delta2:  0.000714,
		domain.Lambda2: 0.004662,
		domain.L2:      0.017862,
		domain.T2:      0.017180,
		domain.S2:      0.294019,
		domain.R2:      0.002463,
		domain.K2:      0.079924,
		domain.Eta2:    0.004467,
	}

	longPeriodAmplitudes = map[domain.Constituent]float64{
		domain.Node: 0.027929,
		domain.Sa:   0.004922,
		domain.Ssa:  0.030988,
		domain.Sta:  0.001809,
		domain.MSm:  0.006728,
		domain.Mm:   0.035184,
		domain.MSf:  0.005837,
		domain.Mf:   0.066607,
		domain.MStm: 0.002422,
		domain.Mtm:  0.012753,
		domain.MSqm: 0.002037,
		domain.Mqm:  0.001687,
	}
)

var (
	matrixDiurnal = [3][3]float64{
		{3.1214, -3.8494, 1.7280},
		{-3.1727, 3.9559, -0.7832},
		{1.4380, -3.0297, 1.5917},
	}
	matrixSemidiurnal = [3][3]float64{
		{3.3133, -4.2538, 1.9405},
		{-3.3133, 4.2538, -0.9405},
		{1.5018, -3.2579, 1.7561},
	}
)

// Amplitude returns the equilibrium amplitude of an inferable constituent.
func Amplitude(c domain.Constituent) (float64, bool) {
	for _, table := range []map[domain.Constituent]float64{
		diurnalAmplitudes, semidiurnalAmplitudes, longPeriodAmplitudes,
	} {
		if amp, ok := table[c]; ok {
			return amp, true
		}
	}
	return 0, false
}
