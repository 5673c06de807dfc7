// Package analysis extracts oscillation characteristics from recorded cloth
// motion.
//
// A hanging cloth in wind flutters: points along the hem swing back and
// forth at a rate set by stiffness, mass and wind. [Spectrum] turns a sampled
// coordinate series into a power spectrum and [DominantFrequency] picks its
// strongest non-constant component:
//
//	freq, err := analysis.DominantFrequency(hemZ, sampleDt)
//	if err == nil {
//	    fmt.Printf("flutter at %.2f Hz\n", freq)
//	}
//
// [HemSeries] pulls the hem-center coordinate out of recorded frames.
package analysis
