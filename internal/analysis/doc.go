// Package analysis extracts beam-dynamics quantities from tracking.
//
// The package covers the standard post-processing chain:
//
//   - [Tune]: betatron tune from turn-by-turn data via a windowed FFT
//   - [TransferMatrix]: 6x6 one-pass linear map by central differences
//   - [LinearOptics]: stability, tune, and Twiss parameters per plane
//   - [DynamicAperture]: polar survival scan of the transverse plane
//
// # Stability
//
// A plane is linearly stable when the trace of its 2x2 block stays
// inside the open interval (-2, 2):
//
//	m, _ := analysis.TransferMatrix(lat, beam.Coords{}, 0)
//	hor, _ := analysis.LinearOptics(m)
//	if !hor.Stable {
//	    // Horizontal motion grows without bound
//	}
package analysis
