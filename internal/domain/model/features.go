package model

import "math"

// Features holds the engineered columns for one Result.
// Means and rates are NaN when there is no usable history; counts are zero.
type Features struct {
	AvgFinishPositionL5         float64
	RecentDNFCountL5            int
	AvgRacecraftScoreL22        float64
	TrackSpecializationIndexL22 float64
	RecentCarPaceDeltaL5        float64
	TeamAvgPaceDeltaL22         float64
	OverallReliabilityRateL22   float64
	QualifyingGapToPole         float64
}

// MissingFeatures returns a Features value with every float feature missing.
func MissingFeatures() Features {
	nan := math.NaN()
	return Features{
		AvgFinishPositionL5:         nan,
		AvgRacecraftScoreL22:        nan,
		TrackSpecializationIndexL22: nan,
		RecentCarPaceDeltaL5:        nan,
		TeamAvgPaceDeltaL22:         nan,
		OverallReliabilityRateL22:   nan,
		QualifyingGapToPole:         nan,
	}
}

// Values returns the features in FeatureColumns order.
func (f *Features) Values() []float64 {
	return []float64{
		f.AvgFinishPositionL5,
		float64(f.RecentDNFCountL5),
		f.AvgRacecraftScoreL22,
		f.TrackSpecializationIndexL22,
		f.RecentCarPaceDeltaL5,
		f.TeamAvgPaceDeltaL22,
		f.OverallReliabilityRateL22,
		f.QualifyingGapToPole,
	}
}

// SetValues is the inverse of Values. It panics on a length mismatch.
func (f *Features) SetValues(v []float64) {
	if len(v) != len(FeatureColumns) {
		panic("model: feature vector length mismatch")
	}
	f.AvgFinishPositionL5 = v[0]
	f.RecentDNFCountL5 = int(v[1])
	f.AvgRacecraftScoreL22 = v[2]
	f.TrackSpecializationIndexL22 = v[3]
	f.RecentCarPaceDeltaL5 = v[4]
	f.TeamAvgPaceDeltaL22 = v[5]
	f.OverallReliabilityRateL22 = v[6]
	f.QualifyingGapToPole = v[7]
}

// FeatureRecord is a Result with its engineered features.
type FeatureRecord struct {
	Result
	Features
}
