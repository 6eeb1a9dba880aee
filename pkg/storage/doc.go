// Package storage writes rendered slides into the output directory.
//
// Files are named gigs_{YYYYMMDD}_{region}_carousel{n}.png, where n=0 is the
// title slide. Writes go to a temporary file first and are renamed into
// place, so a crashed run never leaves a truncated PNG behind.
//
//	manager, err := storage.NewManager(cfg.Output.Directory)
//	name := storage.SlideFilename(date, "stkilda", 1)
//	if err := manager.Save(name, &buf); err != nil {
//	    return err
//	}
package storage
