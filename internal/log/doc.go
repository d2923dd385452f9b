// Package log builds the slog loggers and the observers used by pdscload.
//
// Loggers write text by default and JSON on request. Their handler is
// wrapped in a RootRelativeHandler, which shortens paths under the archive
// and the target:
//
//	logger := log.NewLogger(os.Stderr, log.Options{
//	    Verbose: true,
//	    Roots: []log.Root{
//	        {Name: "$DATA", Path: cfg.DataPath},
//	        {Name: "$TARGET", Path: cfg.TargetPath},
//	    },
//	})
//	logger.Debug("copied", "path", "/srv/archive/DT1/214/DT1-214-A.mp3")
//	// path=$DATA/DT1/214/DT1-214-A.mp3
//
// A log shared from one machine then reads the same on another.
//
// Pipeline events reach the user through a ConsoleObserver and, when
// verbose, the logger through the observer returned by NewSlogObserver.
package log
