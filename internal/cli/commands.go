package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/zach2017/oldtownaltour/internal/common"
	"github.com/zach2017/oldtownaltour/internal/filex"
	"github.com/zach2017/oldtownaltour/internal/models"
	"github.com/zach2017/oldtownaltour/internal/services"
)

// List prints every location as a table.
func (a *App) List(ctx context.Context) error {
	locs, err := a.service.List(ctx)
	if err != nil {
		return err
	}
	return renderLocations(a.out, locs)
}

// Show prints one location and its attachments as a tree.
func (a *App) Show(ctx context.Context, id string) error {
	loc, err := a.service.Get(ctx, id)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(a.out, locationTree(*loc))
	return err
}

// Add prompts for the fields of a new location. Beacon id and name are
// required.
func (a *App) Add(ctx context.Context) error {
	beacon, err := GetRequiredText(a.reader, "Beacon ID", a.out)
	if err != nil {
		return err
	}
	name, err := GetRequiredText(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	desc, err := GetMultiline(a.reader, "Description", a.out)
	if err != nil {
		return err
	}

	loc, err := a.service.Create(ctx, models.LocationInput{BeaconID: beacon, Name: name, Description: desc})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Created %s\n", loc.LocationID)
	return err
}

// Edit prompts for replacements of the editable fields of location id.
func (a *App) Edit(ctx context.Context, id string) error {
	loc, err := a.service.Get(ctx, id)
	if err != nil {
		return err
	}

	var patch models.LocationPatch
	if patch.BeaconID, err = GetEdit(a.reader, "Beacon ID", loc.BeaconID, a.out); err != nil {
		return err
	}
	if patch.Name, err = GetEdit(a.reader, "Name", loc.Name, a.out); err != nil {
		return err
	}
	if patch.Description, err = GetEdit(a.reader, "Description", loc.Description, a.out); err != nil {
		return err
	}

	if (patch.BeaconID != nil && *patch.BeaconID == "") || (patch.Name != nil && *patch.Name == "") {
		return fmt.Errorf("%w: beacon id and name cannot be empty", common.ErrInvalidInput)
	}
	if patch.IsEmpty() {
		_, err = fmt.Fprintln(a.out, "Nothing changed")
		return err
	}

	if _, err := a.service.Update(ctx, id, patch); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Updated %s\n", id)
	return err
}

// Delete removes location id after confirmation.
func (a *App) Delete(ctx context.Context, id string) error {
	loc, err := a.service.Get(ctx, id)
	if err != nil {
		return err
	}
	prompt := fmt.Sprintf("Delete %q and its %d file(s)? (y/N)", loc.Name, loc.FileCount())
	answer, err := GetSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if answer != "y" && answer != "yes" {
		_, err = fmt.Fprintln(a.out, "Cancelled")
		return err
	}

	if err := a.service.Delete(ctx, id); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Deleted %s\n", id)
	return err
}

// Attach uploads the file at path to location id and reports progress.
func (a *App) Attach(ctx context.Context, id, path string) error {
	fd, err := models.FileDescriptorFromPath(path)
	if err != nil {
		return err
	}

	upload := a.service.Attach(ctx, id, fd)
	inPlace := a.progressInPlace()
	for p := range upload.Progress() {
		if inPlace {
			fmt.Fprintf(a.out, "\rUploading %s %3d%%", fd.Name, p)
		} else {
			fmt.Fprintf(a.out, "Uploading %s %d%%\n", fd.Name, p)
		}
	}
	if inPlace {
		fmt.Fprintln(a.out)
	}

	f, err := upload.Wait()
	if err != nil {
		return err
	}

	note := "content stored inline"
	if !f.Retained() {
		note = "metadata only"
	}
	_, err = fmt.Fprintf(a.out, "Attached %s as %s file %s (%s)\n", f.Filename, f.Type, f.FileID, note)
	return err
}

// Detach removes file fileID from location id.
func (a *App) Detach(ctx context.Context, id, fileID string) error {
	if err := a.service.Detach(ctx, id, fileID); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.out, "Removed %s\n", fileID)
	return err
}

// Search lists the locations matching query.
func (a *App) Search(ctx context.Context, query string) error {
	locs, err := a.service.Search(ctx, query)
	if err != nil {
		return err
	}
	if len(locs) == 0 {
		_, err = fmt.Fprintln(a.out, "No locations match")
		return err
	}
	return renderLocations(a.out, locs)
}

func (a *App) Stats(ctx context.Context) error {
	s, err := a.service.Stats(ctx)
	if err != nil {
		return err
	}
	return renderStats(a.out, s)
}

// Export writes the catalog to path in the named format.
func (a *App) Export(ctx context.Context, format, path string) error {
	f, err := services.ParseFormat(format)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("%w: export path is required", common.ErrInvalidInput)
	}
	env, err := a.service.Export(ctx)
	if err != nil {
		return err
	}

	if _, err := filex.EnsureParentDir(path); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := services.WriteExport(file, env, f); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	a.log.Info(ctx, "catalog exported", "format", f, "path", path, "locations", env.TotalLocations)
	_, err = fmt.Fprintf(a.out, "Exported %d locations to %s\n", env.TotalLocations, path)
	return err
}

// Import creates locations from the JSON or YAML file at path.
func (a *App) Import(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	records, err := services.DecodeImport(data, services.FormatFromPath(path))
	if err != nil {
		return err
	}

	res, err := a.service.Import(ctx, records)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Imported %d locations", res.Imported)
	if res.Failed > 0 {
		msg += fmt.Sprintf(" (%d failed)", res.Failed)
	}
	_, err = fmt.Fprintln(a.out, msg)
	return err
}

// Health prints the storage status.
func (a *App) Health(ctx context.Context) error {
	h, err := a.service.Health(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "Storage: %s (%s)\n", h.Status, h.Provider)
	return err
}

// describeError turns catalog errors into short user messages.
func describeError(err error) string {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return "location not found"
	case errors.Is(err, common.ErrFileNotFound):
		return "file not found"
	case errors.Is(err, common.ErrQuotaExceeded):
		return "storage is full"
	}
	return err.Error()
}
