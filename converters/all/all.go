package all

import (
	// Import all the converters so they register themselves
	_ "github.com/darianmavgo/admitdb/converters/csv"
	_ "github.com/darianmavgo/admitdb/converters/excel"
)
