package storage

import (
	"path"
	"strconv"

	"github.com/rkit/filemanager-go/internal/file/biz"
)

// Both backends share one layout. Permanent bytes live at
// {period}/{ownerType}/{ownerID}/{fileID}/{name}; temporary bytes at
// tmp/{period}/{ownerType}/{fileID}/{name}. The per-file directory
// also holds the file's derived artifacts, so removing it sweeps them
// along.
func relPath(f *biz.File, temporary bool) string {
	if temporary {
		return path.Join(
			"tmp",
			f.PeriodBucket(),
			strconv.Itoa(f.OwnerType),
			strconv.FormatInt(f.ID, 10),
			f.Name,
		)
	}
	return path.Join(
		f.PeriodBucket(),
		strconv.Itoa(f.OwnerType),
		strconv.FormatInt(f.OwnerID, 10),
		strconv.FormatInt(f.ID, 10),
		f.Name,
	)
}
