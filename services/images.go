package services

import (
	"context"

	"github.com/vnkhanh/bkhome-server/storage"
	"github.com/vnkhanh/bkhome-server/utils"
)

// Object key namespaces.
const (
	entityRoom   = "room"
	entityReview = "review"
	entityAvatar = "avatar"
)

// uploadImages uploads files one at a time under "<entity>/<parent>/..." and
// calls save with each resulting URL. It stops at the first failure; what was
// uploaded so far stays recorded in batch for compensation.
func uploadImages(ctx context.Context, batch *imageBatch, entity string, parent uint, files []storage.File, save func(url string) error) error {
	for _, f := range files {
		url, err := batch.upload(ctx, f, utils.ObjectKey(entity, parent, f.Name))
		if err != nil {
			return err
		}
		if err := save(url); err != nil {
			return err
		}
	}
	return nil
}
