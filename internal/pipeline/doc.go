// Package pipeline runs a load as a sequence of steps.
//
// A load walks the archive, builds the index and writes it to a target.
// Each stage is a Step that receives the model.LoadRun and adds its results
// to it, so later steps see what earlier ones produced and the finished run
// can be reported and saved as a whole.
//
// Two step sets are provided. The device set prepares the target, installs
// the viewer and copies the data into the repository. The site set writes a
// static website instead. IndexPipeline only walks and indexes, for callers
// that never touch a target.
package pipeline
