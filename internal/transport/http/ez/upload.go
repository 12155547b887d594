package ez

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"places-api/internal/core/assets"
	"places-api/internal/domain"
	"places-api/internal/validation"
)

const keyUploadedAsset = "uploadedAsset"

// SaveUpload 读取 multipart 图片字段并写入 asset store，返回引用。
// 引用记在 context 上，请求后续失败时 Fail 会删除它。
func (e EZ) SaveUpload(c *gin.Context, field string) (string, error) {
	if e.d.Assets == nil {
		return "", domain.Internal("Could not store the image, please try again", errors.New("asset store not configured"))
	}
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", &domain.Error{Kind: domain.KindValidation, Msg: validation.MsgInvalidInput, Err: fmt.Errorf("%s: is required", field)}
		}
		return "", &domain.Error{Kind: domain.KindValidation, Msg: validation.MsgInvalidInput, Err: err}
	}
	f, err := fh.Open()
	if err != nil {
		return "", domain.Internal("Could not store the image, please try again", err)
	}
	defer f.Close()

	ref, err := assets.SaveImage(c.Request.Context(), e.d.Assets, f, e.d.MaxUploadBytes)
	switch {
	case errors.Is(err, assets.ErrTooLarge), errors.Is(err, assets.ErrUnsupportedType):
		return "", &domain.Error{Kind: domain.KindValidation, Msg: "Invalid image, only png/jpg/jpeg up to the size limit are allowed", Err: err}
	case err != nil:
		return "", domain.Internal("Could not store the image, please try again", err)
	}
	c.Set(keyUploadedAsset, ref)
	return ref, nil
}
