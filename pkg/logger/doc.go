// Package logger provides the structured logging interface used across gigslides.
//
// It wraps zerolog behind a small Logger interface so packages can accept a
// logger.Logger and tests can swap in a TestLogger that captures messages.
//
// Basic Usage:
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	logger.WithField("region", "stkilda").Info("carousel built")
//
//	log := logger.GetLogger().WithField("component", "packer")
//	log.WarnWithFields("gig taller than slide", map[string]interface{}{
//	    "height": 980,
//	    "budget": 872,
//	})
//
// Console output is colourised; when Logging.File is set, JSON lines are also
// appended to that file.
package logger
