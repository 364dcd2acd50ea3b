package prediction

// Calibration holds the constants the models were trained against. They must
// match the training pipeline; nothing here can detect drift.
type Calibration struct {
	Version string            `yaml:"version" json:"version" validate:"required"`
	Island  IslandCalibration `yaml:"island" json:"island"`
	Usa     UsaCalibration    `yaml:"usa" json:"usa"`
}

// IslandCalibration standardizes the temperature input and sets the monthly baseline.
type IslandCalibration struct {
	TemperatureMean float64 `yaml:"temperature_mean" json:"temperatureMean"`
	TemperatureStd  float64 `yaml:"temperature_std" json:"temperatureStd" validate:"gt=0"`
	Baseline        float64 `yaml:"baseline" json:"baseline" validate:"gt=0"`
}

// UsaCalibration configures the log-space model and which weather it is fed.
type UsaCalibration struct {
	Baseline  float64 `yaml:"baseline" json:"baseline" validate:"gt=0"`
	LogOffset float64 `yaml:"log_offset" json:"logOffset" validate:"gte=0"`

	// UseLiveWeather bins the fetched averages instead of the fixed values below.
	UseLiveWeather   bool    `yaml:"use_live_weather" json:"useLiveWeather"`
	FixedTemperature float64 `yaml:"fixed_temperature" json:"fixedTemperature"`
	FixedWindSpeed   float64 `yaml:"fixed_wind_speed" json:"fixedWindSpeed" validate:"gte=0"`
}

// DefaultCalibration returns the constants the shipped models were trained with.
func DefaultCalibration() Calibration {
	return Calibration{
		Version: "2023-05",
		Island: IslandCalibration{
			TemperatureMean: 4.3893,
			TemperatureStd:  4.1323,
			Baseline:        246, // average accidents per month in Iceland
		},
		Usa: UsaCalibration{
			Baseline:         20240.4,
			LogOffset:        1e-5,
			UseLiveWeather:   false,
			FixedTemperature: 15,
			FixedWindSpeed:   10,
		},
	}
}
