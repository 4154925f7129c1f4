package global

import (
	"github.com/fleetpulse/fleetpulse/pkg/dataaggregator"
	"github.com/fleetpulse/fleetpulse/pkg/dataaggregator/source/databaselookup"
)

func Setup() {
	dataaggregator.GlobalAggregator = dataaggregator.Aggregator{}

	dataaggregator.GlobalAggregator.RegisterSource(databaselookup.Source{})
}
