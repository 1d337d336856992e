package domain

// NationalBucket is the national AQI category
type NationalBucket string

const (
	NationalGood         NationalBucket = "Good"
	NationalSatisfactory NationalBucket = "Satisfactory"
	NationalModerate     NationalBucket = "Moderate"
	NationalPoor         NationalBucket = "Poor"
	NationalVeryPoor     NationalBucket = "Very Poor"
	NationalSevere       NationalBucket = "Severe"
)

// GlobalBucket is the global AQI category
type GlobalBucket string

const (
	GlobalGood                        GlobalBucket = "Good"
	GlobalModerate                    GlobalBucket = "Moderate"
	GlobalUnhealthyForSensitiveGroups GlobalBucket = "Unhealthy for Sensitive Groups"
	GlobalUnhealthy                   GlobalBucket = "Unhealthy"
	GlobalVeryUnhealthy               GlobalBucket = "Very Unhealthy"
	GlobalHazardous                   GlobalBucket = "Hazardous"
)

// NationalBucketFor maps an AQI value to its national category.
// A boundary value belongs to the lower bucket. NaN falls through to Severe.
func NationalBucketFor(aqi float64) NationalBucket {
	switch {
	case aqi <= 50:
		return NationalGood
	case aqi <= 100:
		return NationalSatisfactory
	case aqi <= 200:
		return NationalModerate
	case aqi <= 300:
		return NationalPoor
	case aqi <= 400:
		return NationalVeryPoor
	default:
		return NationalSevere
	}
}

// GlobalBucketFor maps an AQI value to its global category.
// A boundary value belongs to the lower bucket. NaN falls through to Hazardous.
func GlobalBucketFor(aqi float64) GlobalBucket {
	switch {
	case aqi <= 15:
		return GlobalGood
	case aqi <= 35:
		return GlobalModerate
	case aqi <= 55:
		return GlobalUnhealthyForSensitiveGroups
	case aqi <= 150:
		return GlobalUnhealthy
	case aqi <= 250:
		return GlobalVeryUnhealthy
	default:
		return GlobalHazardous
	}
}
