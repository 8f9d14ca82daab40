package constants

const DefaultWavelength float64 = 1550e-9 // [m]
const DefaultGridSize = 512
const DefaultPhysicalSize float64 = 5e-3 // [m]
const DefaultWaist float64 = 1e-3        // [m]
