package toshiba

import "github.com/prometheus/client_golang/prometheus"

var decodeFailures = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "acwatch_toshiba_state_decode_failures_total",
	Help: "Units skipped because their ACStateData could not be decoded",
})

// MetricsCollector reports the unit states seen by the last upstream call.
// Collect never calls the cloud itself; the refresh loop owns the request budget.
type MetricsCollector struct {
	client *Client

	success     prometheus.Gauge
	unitCount   prometheus.Gauge
	powerOn     *prometheus.GaugeVec
	mode        *prometheus.GaugeVec
	fanMode     *prometheus.GaugeVec
	setpoint    *prometheus.GaugeVec
	indoorTemp  *prometheus.GaugeVec
	outdoorTemp *prometheus.GaugeVec
}

func NewMetricsCollector(client *Client) *MetricsCollector {
	labels := []string{"unit_id", "unit_name"}
	modeLabels := []string{"unit_id", "unit_name", "mode"}
	return &MetricsCollector{
		client: client,
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "acwatch_toshiba_scrape_success",
			Help: "Last upstream call success (1=ok, 0=error)",
		}),
		unitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "acwatch_toshiba_units",
			Help: "Units reported by the last successful upstream call",
		}),
		powerOn: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "acwatch_toshiba_power_on",
			Help: "Unit power state (1=on, 0=off or unknown)",
		}, labels),
		mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "acwatch_toshiba_mode",
			Help: "Active operating mode (1=active)",
		}, modeLabels),
		fanMode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "acwatch_toshiba_fan_mode",
			Help: "Active fan mode (1=active)",
		}, modeLabels),
		setpoint: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "acwatch_toshiba_target_temperature_celsius",
			Help: "Target temperature (celsius)",
		}, labels),
		indoorTemp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "acwatch_toshiba_indoor_temperature_celsius",
			Help: "Indoor temperature reported by the unit (celsius)",
		}, labels),
		outdoorTemp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "acwatch_toshiba_outdoor_temperature_celsius",
			Help: "Outdoor temperature reported by the unit (celsius)",
		}, labels),
	}
}

func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	c.success.Describe(ch)
	c.unitCount.Describe(ch)
	c.powerOn.Describe(ch)
	c.mode.Describe(ch)
	c.fanMode.Describe(ch)
	c.setpoint.Describe(ch)
	c.indoorTemp.Describe(ch)
	c.outdoorTemp.Describe(ch)
}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	states, err := c.client.LastStates()
	if err != nil {
		c.success.Set(0)
	} else {
		c.success.Set(1)
	}

	c.powerOn.Reset()
	c.mode.Reset()
	c.fanMode.Reset()
	c.setpoint.Reset()
	c.indoorTemp.Reset()
	c.outdoorTemp.Reset()

	c.unitCount.Set(float64(len(states)))
	for _, s := range states {
		labels := prometheus.Labels{"unit_id": s.Unit.ID, "unit_name": s.Unit.Name}
		on := 0.0
		if s.State.PowerStatus == PowerOn {
			on = 1
		}
		c.powerOn.With(labels).Set(on)
		c.mode.WithLabelValues(s.Unit.ID, s.Unit.Name, s.State.Mode.String()).Set(1)
		c.fanMode.WithLabelValues(s.Unit.ID, s.Unit.Name, s.State.FanMode.String()).Set(1)
		c.setpoint.With(labels).Set(float64(s.State.TargetTemperature))
		c.indoorTemp.With(labels).Set(float64(s.State.IndoorTemp))
		c.outdoorTemp.With(labels).Set(float64(s.State.OutdoorTemp))
	}

	c.success.Collect(ch)
	c.unitCount.Collect(ch)
	c.powerOn.Collect(ch)
	c.mode.Collect(ch)
	c.fanMode.Collect(ch)
	c.setpoint.Collect(ch)
	c.indoorTemp.Collect(ch)
	c.outdoorTemp.Collect(ch)
}
