/*
sample.go - Self-contained demonstration dataset

PURPOSE:
  Writes a small payroll extract where every rule in both batteries has
  at least one known trigger, so a fresh checkout can produce a full
  findings run without real data. The dataset doubles as the fixture for
  the end-to-end pipeline test.

CAST:
  E001  clean: ledger replays exactly to the snapshot, healthy LSL
  E002  casual with an ANNUAL accrual (day-first start date)
  E003  14 years of service, no LSL row, two pay rate rows (latest wins)
  E004  negative LSL balance, salary-only pay rate
  E005  eligible tenure with an LSL balance of exactly zero
  E006  full tenure with a suspiciously low LSL balance
  E007  leave taken before the start date
  E008  negative ANNUAL snapshot balance that still reconciles
  E009  both event sign anomalies
  E010  ledger/snapshot mismatch beyond tolerance
  E011  terminated years ago; service stops at the end date
*/
package loader

import (
	"fmt"
	"os"
	"path/filepath"
)

const sampleEmployees = `employee_id,employment_type,fte,start_date,end_date
E001,FULL_TIME,1.0,2015-03-02,
E002,CASUAL,0.4,01/07/2021,
E003,FULL_TIME,1.0,2010-01-10,
E004,FULL_TIME,1.0,2012-02-01,
E005,FULL_TIME,1.0,2016-06-15,
E006,FULL_TIME,1.0,2011-05-23,
E007,FULL_TIME,1.0,2020-01-01,
E008,PART_TIME,0.6,2018-09-03,
E009,FULL_TIME,1.0,2019-04-01,
E010,FULL_TIME,1.0,2022-11-01,
E011,FULL_TIME,1.0,2005-01-10,2012-06-30
`

const sampleLedger = `employee_id,leave_type,event_date,units,event_type
E001,ANNUAL,2024-04-01,10,ACCRUAL
E001,ANNUAL,2024-05-10,-4,TAKEN
E001,ANNUAL,2024-07-15,2,ACCRUAL
E001,LSL,2023-07-01,45,ACCRUAL
E002,ANNUAL,01/03/2024,1.5,ACCRUAL
E004,LSL,2024-04-20,-12.5,TAKEN
E006,LSL,2024-01-31,8.5,ACCRUAL
E007,ANNUAL,2019-12-15,-4,TAKEN
E008,ANNUAL,2024-01-15,10,ACCRUAL
E008,ANNUAL,2024-03-10,-13.5,TAKEN
E009,PERSONAL,2024-02-01,-2,ACCRUAL
E009,PERSONAL,2024-02-15,3,TAKEN
E010,ANNUAL,2024-05-01,10,ACCRUAL
E011,LSL,2012-06-01,30,ACCRUAL
`

const sampleSnapshot = `employee_id,leave_type,as_of_date,balance_units
E001,ANNUAL,2024-06-30,6
E001,LSL,2024-06-30,45
E004,LSL,2024-06-30,-12.5
E005,LSL,2024-06-30,0
E006,LSL,2024-06-30,8.5
E008,ANNUAL,2024-06-30,-3.5
E010,ANNUAL,2024-06-30,20
E011,LSL,2024-06-30,30
`

const samplePayRates = `employee_id,hourly_rate,annual_salary,as_of_date
E001,48.00,,2024-07-01
E003,50.00,,01/07/2023
E003,52.00,,2024-07-01
E004,,98800,2024-07-01
E005,45.00,,2024-07-01
E006,61.45,,2024-07-01
`

// WriteSampleData writes the demonstration extract into dir, creating the
// directory if needed. Existing files are overwritten.
func WriteSampleData(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sample dir: %w", err)
	}
	files := map[string]string{
		FileEmployees: sampleEmployees,
		FileLedger:    sampleLedger,
		FileSnapshot:  sampleSnapshot,
		FilePayRates:  samplePayRates,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("write sample %s: %w", name, err)
		}
	}
	return nil
}
