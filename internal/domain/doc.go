// Package domain models district-level rainfall normals and the flood
// assessments derived from them.
//
// # Data Source
//
// Rows come from the district-wise rainfall normals dataset (one row per
// district, long-term monthly means in millimetres). The batch CLI reads the
// dataset directly from CSV or XLSX; the streaming service receives each row
// as flat JSON on the Kafka source topic, keyed by the same column names.
//
// # Column Conventions
//
//	STATE_UT_NAME   state or union territory
//	DISTRICT        district name
//	JAN … DEC       monthly normal rainfall (mm)
//	ANNUAL          annual normal rainfall (mm)
//	Jun-Sep         south-west monsoon total (mm), optional
//
// Every column except Jun-Sep is required; [ValidateColumns] reports all
// missing columns at once. A row without Jun-Sep gets a monsoon total of 0.
// Blank numeric cells are read as 0; negative or non-numeric cells reject the
// row.
//
// # Derived Metrics
//
// Per district: mean, max, min and population standard deviation of the
// twelve monthly values, the month with the highest normal (earliest month on
// ties), and the monsoon share of the annual total. The share is 0 when the
// annual total is 0.
//
// # Flood Assessment
//
// One rainfall figure per district (monsoon total by default, annual total
// when the basis is "annual") is run through the hydrology model chain. See
// package hydrology for the formulas.
//
// # ID Generation
//
// District IDs are deterministic SHA-256 hashes of state|district. Replaying
// the same row yields the same ID and, with a fixed simulation seed, the same
// progression series. See [generateID].
package domain
