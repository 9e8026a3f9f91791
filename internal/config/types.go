/*
Copyright © 2026 the HEM authors.
This file is part of HEM.

HEM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

HEM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with HEM.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package config implements the input JSON document parsing and
// cross-reference validation for the dwelling energy simulation, and
// assembles the fully-wired hem.Project the engine runs, per spec §6.
// It also carries the Future Homes Standard pre/post-processing
// wrapper as a pipeline of deterministic project-document transforms,
// per spec §9.
package config

// InputDoc is the top-level input JSON document, per spec §6.
type InputDoc struct {
	SimulationTime      SimulationTimeDoc          `json:"SimulationTime" validate:"required"`
	ExternalConditions   *ExternalConditionsDoc     `json:"ExternalConditions,omitempty"`
	ColdWaterSource      map[string]ColdWaterDoc    `json:"ColdWaterSource,omitempty"`
	EnergySupply         map[string]EnergySupplyDoc `json:"EnergySupply" validate:"required"`
	Control              map[string]ControlDoc      `json:"Control,omitempty"`
	InfiltrationVentilation *InfiltrationVentilationDoc `json:"InfiltrationVentilation,omitempty"`
	Zone                 map[string]ZoneDoc         `json:"Zone" validate:"required"`
	HeatSourceWet         map[string]HeatSourceWetDoc `json:"HeatSourceWet,omitempty"`
	SpaceHeatSystem       map[string]SpaceHeatSystemDoc `json:"SpaceHeatSystem,omitempty"`
	SpaceCoolSystem       map[string]SpaceCoolSystemDoc `json:"SpaceCoolSystem,omitempty"`
	HotWaterDemand        *HotWaterDemandDoc         `json:"HotWaterDemand,omitempty"`
	HotWaterSource        map[string]HotWaterSourceDoc `json:"HotWaterSource,omitempty"`
	WWHRS                 map[string]WWHRSDoc        `json:"WWHRS,omitempty"`
	OnSiteGeneration      map[string]OnSiteGenerationDoc `json:"OnSiteGeneration,omitempty"`
	Events                *EventsDoc                 `json:"Events,omitempty"`
	SmartApplianceControls map[string]SmartApplianceControlDoc `json:"SmartApplianceControls,omitempty"`
}

// SimulationTimeDoc is spec §6's SimulationTime{start,end,step}.
type SimulationTimeDoc struct {
	Start float64 `json:"start"`
	End   float64 `json:"end" validate:"gtfield=Start"`
	Step  float64 `json:"step" validate:"gt=0"`
}

// ShadingObjectDoc mirrors hem.ShadingObject.
type ShadingObjectDoc struct {
	Type     string  `json:"type" validate:"oneof=obstacle overhang sidefinleft sidefinright"`
	Height   float64 `json:"height"`
	Distance float64 `json:"distance"`
	Tilt     float64 `json:"tilt"`
	Depth    float64 `json:"depth"`
}

// ShadingSegmentDoc mirrors hem.ShadingSegment.
type ShadingSegmentDoc struct {
	StartAngle float64            `json:"start360"`
	EndAngle   float64            `json:"end360"`
	Shading    []ShadingObjectDoc `json:"shading_objects,omitempty"`
}

// ExternalConditionsDoc is spec §6's ExternalConditions.
type ExternalConditionsDoc struct {
	AirTemperatures            []float64           `json:"air_temperatures"`
	WindSpeeds                 []float64           `json:"wind_speeds"`
	WindDirections              []float64           `json:"wind_directions"`
	DirectBeamRadiation         []float64           `json:"direct_beam_radiation"`
	DiffuseHorizontalRadiation  []float64           `json:"diffuse_horizontal_radiation"`
	SolarReflectivityOfGround   []float64           `json:"solar_reflectivity_of_ground"`
	Latitude                    float64             `json:"latitude"`
	Longitude                   float64             `json:"longitude"`
	DirectBeamConversionNeeded  bool                `json:"direct_beam_conversion_needed"`
	ShadingSegments             []ShadingSegmentDoc `json:"shading_segments,omitempty"`
}

// ColdWaterDoc is spec §6's ColdWaterSource{name}.
type ColdWaterDoc struct {
	Temperatures []float64 `json:"temperatures" validate:"required"`
	StartDay     int       `json:"start_day"`
	TimeSeriesStep float64 `json:"time_series_step" validate:"gt=0"`
}

// EnergySupplyDoc is spec §6's EnergySupply{name}.
type EnergySupplyDoc struct {
	FuelCode         string              `json:"fuel" validate:"required,oneof=mains_gas electricity unmet_demand custom LPG_bulk LPG_bottled LPG_condition_11F energy_from_environment"`
	ElectricBattery  *ElectricBatteryDoc `json:"ElectricBattery,omitempty"`
	Diverter         *DiverterDoc        `json:"diverter,omitempty"`
	Tariff           string              `json:"tariff,omitempty"`
	ThresholdCharges [12]float64         `json:"threshold_charges,omitempty"`
	ThresholdPrices  [12]float64         `json:"threshold_prices,omitempty"`
	Priority         []string            `json:"priority,omitempty"`
	IsExportCapable  bool                `json:"is_export_capable"`
}

// ElectricBatteryDoc mirrors energysupply.Battery's input fields.
type ElectricBatteryDoc struct {
	CapacityKWh         float64 `json:"capacity" validate:"gt=0"`
	RoundTripEfficiency float64 `json:"round_trip_efficiency" validate:"gt=0,lte=1"`
	MaxChargeRateKW     float64 `json:"max_charge_rate_kw" validate:"gt=0"`
	MaxDischargeRateKW  float64 `json:"max_discharge_rate_kw" validate:"gt=0"`
	AgeYears            float64 `json:"battery_age"`
	Location            string  `json:"battery_location" validate:"omitempty,oneof=indoor outdoor"`
}

// DiverterDoc mirrors energysupply.Diverter's input fields.
type DiverterDoc struct {
	MaxPowerKW float64 `json:"max_power_kw" validate:"gt=0"`
	Target     string  `json:"target" validate:"required"`
}

// ControlDoc is the tagged-union JSON shape of spec §6's Control{name}.
type ControlDoc struct {
	Type string `json:"type" validate:"required,oneof=OnOffTimeControl OnOffCostMinimisingTimeControl SetpointTimeControl ChargeControl CombinationTimeControl"`

	// OnOffTimeControl / shared schedule field.
	Schedule []bool `json:"schedule,omitempty"`

	// OnOffCostMinimisingTimeControl.
	Costs      []float64 `json:"cost_schedule,omitempty"`
	NumOnHours int       `json:"time_on_hours,omitempty"`

	// SetpointTimeControl.
	Setpoints     []float64 `json:"schedule_setpoints,omitempty"`
	AdvancedStart float64   `json:"advanced_start,omitempty"`

	// ChargeControl.
	LogicType     string  `json:"logic_type,omitempty" validate:"omitempty,oneof=Manual Automatic CELECT HHRSH HB"`
	ChargeWindow  []bool  `json:"charge_level,omitempty"`
	FixedFraction float64 `json:"target_charge,omitempty"`
	ExternalSensorControl string `json:"external_sensor,omitempty"`
	TempCutC      float64 `json:"temp_charge_cut,omitempty"`

	// CombinationTimeControl: name -> leaf reference or nested combination.
	Combination map[string]CombinationEntryDoc `json:"combination,omitempty"`
}

// CombinationEntryDoc is one node of a CombinationTimeControl tree.
type CombinationEntryDoc struct {
	Controls  []string `json:"controls,omitempty"`
	Operation string   `json:"operation,omitempty" validate:"omitempty,oneof=AND OR XOR NOT MAX MIN MEAN"`
}

// InfiltrationVentilationDoc is spec §6's InfiltrationVentilation.
type InfiltrationVentilationDoc struct {
	Leaks                  *LeaksDoc                 `json:"Leaks,omitempty"`
	Vents                  map[string]VentDoc        `json:"Vents,omitempty"`
	MechanicalVentilation  map[string]MechVentDoc    `json:"MechanicalVentilation,omitempty"`
	CombustionAppliances   map[string]CombustionDoc  `json:"CombustionAppliances,omitempty"`
	CrossVentPossible      bool                      `json:"cross_vent_possible"`
	ShieldClass            string                    `json:"shield_class" validate:"omitempty,oneof=sheltered average exposed"`
	TerrainClass           string                    `json:"terrain_class" validate:"omitempty,oneof=city suburban open_country"`
	AltitudeM              float64                   `json:"altitude"`
	VentilationZoneBaseHeightM float64               `json:"ventilation_zone_base_height"`
	AchMin                 float64                   `json:"ach_min,omitempty"`
	AchMax                 float64                   `json:"ach_max,omitempty"`
}

// LeaksDoc mirrors ventilation.LeakTest.
type LeaksDoc struct {
	TestPressurePa float64 `json:"test_pressure" validate:"gt=0"`
	TestResult     float64 `json:"test_result" validate:"gte=0"`
	EnvArea        float64 `json:"env_area" validate:"gt=0"`
	VentilationZoneHeight float64 `json:"ventilation_zone_height" validate:"gt=0"`
}

// VentDoc is one entry of InfiltrationVentilation.Vents (trickle vents
// and openable windows).
type VentDoc struct {
	MidHeightM   float64 `json:"mid_height"`
	Orientation  float64 `json:"orientation360"`
	EquivAreaCm2 float64 `json:"equivalent_area"`
	OpeningRatio float64 `json:"opening_ratio"`
}

// MechVentDoc mirrors ventilation.NewMechanicalPath's inputs.
type MechVentDoc struct {
	Type           string  `json:"vent_type" validate:"required,oneof=Intermittent-MEV Centralised-MEV Decentralised-MEV MVHR PIV"`
	SupplyFlowM3PerH  float64 `json:"supply_air_flow_rate"`
	ExtractFlowM3PerH float64 `json:"extract_air_flow_rate"`
	MVHREfficiency float64 `json:"mvhr_efficiency"`
}

// CombustionDoc mirrors ventilation.CombustionApplianceExtract's inputs.
type CombustionDoc struct {
	Fuel          string  `json:"fuel_type" validate:"required,oneof=gas oil solid_fuel"`
	ApplianceType string  `json:"appliance_type" validate:"required,oneof=open_flued room_sealed flueless"`
	RatedInputKW  float64 `json:"rated_input" validate:"gt=0"`
}

// ZoneDoc is spec §6's Zone{name}.
type ZoneDoc struct {
	BuildingElements map[string]BuildingElementDoc `json:"BuildingElements" validate:"required"`
	ThermalBridging  float64                       `json:"ThermalBridging"`
	AreaM2           float64                       `json:"area" validate:"gt=0"`
	VolumeM3         float64                       `json:"volume" validate:"gt=0"`
	TempSetpntInitC  float64                       `json:"temp_setpnt_init"`
	TempSetpntBasis  string                        `json:"temp_setpnt_basis" validate:"omitempty,oneof=air operative"`
	SpaceHeatSystem  string                        `json:"SpaceHeatSystem,omitempty"`
	SpaceCoolSystem  string                        `json:"SpaceCoolSystem,omitempty"`
	SpaceHeatControl string                        `json:"SpaceHeatControl,omitempty"`
	SpaceCoolControl string                        `json:"SpaceCoolControl,omitempty"`
	BuildingHeightM  float64                       `json:"building_height,omitempty"`
}

// LayerDoc mirrors elements.Layer.
type LayerDoc struct {
	ThicknessM   float64 `json:"thickness" validate:"gt=0"`
	Conductivity float64 `json:"conductivity" validate:"gt=0"`
	VolCapacity  float64 `json:"vol_heat_capacity" validate:"gte=0"`
}

// EdgeInsulationDoc mirrors elements.EdgeInsulationSpec.
type EdgeInsulationDoc struct {
	Horizontal   bool    `json:"horizontal"`
	WidthOrDepth float64 `json:"width" validate:"gte=0"`
	R            float64 `json:"resistance" validate:"gte=0"`
}

// BuildingElementDoc is the tagged union of spec §6's BuildingElements
// entries: opaque, transparent, ground (with floor_type discriminator),
// adjacent-conditioned, adjacent-unconditioned-simple.
type BuildingElementDoc struct {
	ElementType string `json:"type" validate:"required,oneof=BuildingElementOpaque BuildingElementTransparent BuildingElementGround BuildingElementAdjacentConditionedSpace BuildingElementAdjacentUnconditionedSpace_Simple"`

	AreaM2      float64    `json:"area" validate:"gt=0"`
	Pitch       float64    `json:"pitch" validate:"gte=0,lte=180"`
	Orientation float64    `json:"orientation360"`
	Layers      []LayerDoc `json:"layers,omitempty"`

	// Opaque only.
	SolarAbsorption float64 `json:"solar_absorption_coeff,omitempty"`

	// Transparent only.
	GValue        float64 `json:"g_value,omitempty"`
	FrameFraction float64 `json:"frame_area_fraction,omitempty"`
	TreatmentMaxGValueReduction float64 `json:"treatment_max_g_reduction,omitempty"`
	TreatmentClosingTimeHours   float64 `json:"treatment_closing_time,omitempty"`
	TreatmentTriggerIrradiance  float64 `json:"treatment_trigger_irradiance,omitempty"`

	// AdjacentUnconditioned only.
	AdditionalResistance float64 `json:"additional_r,omitempty"`

	// Ground only.
	FloorType  string  `json:"floor_type,omitempty" validate:"omitempty,oneof=slab_no_edge_insulation slab_edge_insulation suspended_floor heated_basement unheated_basement"`
	UValue     float64 `json:"u_value,omitempty"`
	Perimeter  float64 `json:"perimeter,omitempty"`
	Psi        float64 `json:"psi,omitempty"`
	WallThicknessM float64 `json:"thickness_walls,omitempty"`
	EdgeInsulation []EdgeInsulationDoc `json:"edge_insulation,omitempty"`
	WallUValue     float64 `json:"u_value_walls,omitempty"`
	VentAreaPerPerimeter float64 `json:"area_per_perimeter_vent,omitempty"`
	WindShieldClass      string  `json:"shield_fact_location,omitempty"`
	BasementDepthM       float64 `json:"depth_basement_floor,omitempty"`
	BasementWallResistance float64 `json:"thermal_resist_walls_base,omitempty"`
	BasementHeightM      float64 `json:"height_basement_walls,omitempty"`
	FloorAboveUValue     float64 `json:"u_value_basement_fl,omitempty"`
}

// HeatSourceWetDoc is the tagged union of spec §6's HeatSourceWet.
type HeatSourceWetDoc struct {
	Type         string  `json:"type" validate:"required,oneof=Boilder HeatPump HIU"`
	RatedPowerKW float64 `json:"rated_power" validate:"gt=0"`
	EfficiencyFullLoad float64 `json:"efficiency_full_load,omitempty"`
}

// SpaceHeatSystemDoc is not top-level keyed the way HeatSourceWet is in
// the raw input; per spec §3 each zone's SpaceHeatSystem entry carries
// its own embedded circuit/storage-heater configuration. Modelled here
// as its own top-level map for a clean one-document-one-pass build.
type SpaceHeatSystemDoc struct {
	Type           string  `json:"type" validate:"required,oneof=Emitters StorageHeater InstantElecHeater"`
	HeatSourceWet  string  `json:"HeatSource,omitempty"`
	EnergySupply   string  `json:"EnergySupply" validate:"required"`
	ChargeControl  string  `json:"ChargeControl,omitempty"`

	// Emitters (wet distribution).
	EmitterKind        string         `json:"emitter_kind,omitempty" validate:"omitempty,oneof=radiator underfloor fancoil"`
	Coeffs             []CoeffDoc     `json:"emitters,omitempty"`
	ThermalMassKWhPerK float64        `json:"thermal_mass,omitempty"`
	DesignFlowTempC    float64        `json:"design_flow_temp,omitempty"`
	MinFlowTempC       float64        `json:"min_flow_temp,omitempty"`
	EcodesignClass     int            `json:"ecodesign_controller_class,omitempty"`
	BypassFraction     float64        `json:"bypass_percent,omitempty"`
	VariableFlow       bool           `json:"variable_flow,omitempty"`

	// StorageHeater.
	CapacityKWh     float64   `json:"rated_power_kwh,omitempty"`
	ChargeRateKW    float64   `json:"pwr_in,omitempty"`
	MinOutputSOC    []float64 `json:"esh_min_output_soc,omitempty"`
	MinOutputKW     []float64 `json:"esh_min_output_kw,omitempty"`
	MaxOutputSOC    []float64 `json:"esh_max_output_soc,omitempty"`
	MaxOutputKW     []float64 `json:"esh_max_output_kw,omitempty"`
	InstantBackupKW float64   `json:"rated_power_instant,omitempty"`
	FanPowerKW      float64   `json:"fan_pwr,omitempty"`

	// InstantElecHeater.
	RatedPowerKW float64 `json:"rated_power,omitempty"`
}

// SpaceCoolSystemDoc is spec §6's SpaceCoolSystem: a simple rated-power
// cooling unit, the cooling-side counterpart of InstantElecHeater.
type SpaceCoolSystemDoc struct {
	EnergySupply string  `json:"EnergySupply" validate:"required"`
	RatedPowerKW float64 `json:"rated_power" validate:"gt=0"`
}

// CoeffDoc mirrors emitter.Coefficient.
type CoeffDoc struct {
	C float64 `json:"C"`
	N float64 `json:"n"`
}

// HotWaterDemandDoc is spec §6's HotWaterDemand{Shower, Bath, Other, Distribution}.
type HotWaterDemandDoc struct {
	Shower       map[string]ShowerDoc `json:"Shower,omitempty"`
	Bath         map[string]BathDoc   `json:"Bath,omitempty"`
	Other        map[string]OtherDoc  `json:"Other,omitempty"`
	Distribution []PipeDoc            `json:"Distribution,omitempty"`
}

// ShowerDoc describes a shower's flow rate and optional WWHRS link.
type ShowerDoc struct {
	FlowRateLPerMin float64 `json:"flowrate" validate:"gt=0"`
	WWHRS           string  `json:"WWHRS,omitempty"`
}

// BathDoc describes a bath's fixed fill volume.
type BathDoc struct {
	Size float64 `json:"size" validate:"gt=0"`
}

// OtherDoc describes a fixed-flow-rate "other" hot-water outlet (basin, sink).
type OtherDoc struct {
	FlowRateLPerMin float64 `json:"flowrate" validate:"gt=0"`
}

// PipeDoc mirrors hotwater.Pipe.
type PipeDoc struct {
	Location      string  `json:"location" validate:"required,oneof=internal external"`
	InternalDiaMM float64 `json:"internal_diameter_mm" validate:"gt=0"`
	LengthM       float64 `json:"length" validate:"gt=0"`
	InsulationThicknessMM float64 `json:"insulation_thickness_mm,omitempty"`
}

// HotWaterSourceDoc is spec §6's HotWaterSource.hw cylinder.
type HotWaterSourceDoc struct {
	Cylinder *CylinderDoc `json:"hw cylinder,omitempty"`
}

// CylinderDoc is a stored hot-water cylinder's fixed source temperature
// and primary pipework standing-loss coefficient, the minimal subset
// the core needs (full cylinder stratification modelling is out of
// scope per spec.md non-goals around detailed occupant/thermal-store
// physics beyond the core four subsystems).
type CylinderDoc struct {
	StorageTempC   float64 `json:"setpoint_temp" validate:"gt=0"`
	ColdWaterSource string `json:"ColdWaterSource" validate:"required"`
	HeatSourceWet   string `json:"HeatSourceWet" validate:"required"`
	PrimaryPipeworkLossWPerK float64 `json:"primary_pipework_loss,omitempty"`
}

// WWHRSDoc mirrors hotwater.WWHRS.
type WWHRSDoc struct {
	Type            string    `json:"type" validate:"required,oneof=WWHRS_InstantaneousSystemA WWHRS_InstantaneousSystemB WWHRS_InstantaneousSystemC"`
	FlowRateLPerMin []float64 `json:"flow_rates" validate:"required"`
	Efficiency      []float64 `json:"efficiencies" validate:"required"`
	SplitFactor     float64   `json:"utilisation_factor,omitempty"`
}

// OnSiteGenerationDoc mirrors energysupply.PVSystem.
type OnSiteGenerationDoc struct {
	Type                 string  `json:"type" validate:"required,oneof=PhotovoltaicSystem"`
	PeakPowerKW          float64 `json:"peak_power" validate:"gt=0"`
	SystemEfficiency     float64 `json:"inverter_peak_power_efficiency,omitempty"`
	TemperatureCoeffPerK float64 `json:"temp_coeff,omitempty"`
	EnergySupply         string  `json:"EnergySupply" validate:"required"`
}

// EventsDoc is spec §6's Events{Shower, Bath, Other} pre-generated
// occupancy-event stream, consumed directly rather than synthesised at
// runtime (the occupant-behaviour event *generator* is itself an
// external collaborator per spec.md §1).
type EventsDoc struct {
	Shower map[string][]EventDoc `json:"Shower,omitempty"`
	Bath   map[string][]EventDoc `json:"Bath,omitempty"`
	Other  map[string][]EventDoc `json:"Other,omitempty"`
}

// EventDoc mirrors hotwater.Event.
type EventDoc struct {
	Start       float64 `json:"start"`
	DurationMin float64 `json:"duration,omitempty"`
	TemperatureC float64 `json:"temperature"`
	VolumeL     float64 `json:"volume,omitempty"`
	WarmVolumeL float64 `json:"warm_volume,omitempty"`
}

// SmartApplianceControlDoc is spec §9's forecast-ring-buffer smart
// appliance control: a 24-hour forward/backward looking forecast of
// spare generation capacity used to time-shift flexible appliance
// demand. Per the Open Question decision recorded in DESIGN.md, the
// ring advances exactly one slot per real timestep and stale entries
// are cleared (not carried) at rollover.
type SmartApplianceControlDoc struct {
	PowerKW       float64 `json:"power" validate:"gt=0"`
	EnergySupply  string  `json:"EnergySupply" validate:"required"`
}
