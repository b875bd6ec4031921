package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/rs/zerolog"

	"cloudflix/services/streaming-api/internal/config"
	"cloudflix/services/streaming-api/internal/utils/storagekey"
)

// AzureBlob stores objects in an Azure Blob container and issues SAS URLs
// with a configured expiry.
type AzureBlob struct {
	container  string
	client     *azblob.Client
	credential *azblob.SharedKeyCredential
	ttl        time.Duration
	log        zerolog.Logger
}

// NewAzureBlob creates the Azure Blob backend from shared-key credentials.
func NewAzureBlob(cfg *config.Config, log zerolog.Logger) (*AzureBlob, error) {
	logger := log.With().Str("component", "azblob-storage").Logger()

	if cfg.AzureAccountName == "" || cfg.AzureAccountKey == "" || cfg.AzureContainer == "" {
		return nil, fmt.Errorf("VIDEO_AZURE_ACCOUNT_NAME, VIDEO_AZURE_ACCOUNT_KEY and VIDEO_AZURE_CONTAINER are required for the azblob backend")
	}

	credential, err := azblob.NewSharedKeyCredential(cfg.AzureAccountName, cfg.AzureAccountKey)
	if err != nil {
		return nil, fmt.Errorf("azure shared key credential: %w", err)
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AzureAccountName)
	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("azure blob client: %w", err)
	}

	logger.Info().
		Str("account", cfg.AzureAccountName).
		Str("container", cfg.AzureContainer).
		Dur("sas_ttl", cfg.AzureSASTTL).
		Msg("azure blob storage initialized")

	return &AzureBlob{
		container:  cfg.AzureContainer,
		client:     client,
		credential: credential,
		ttl:        cfg.AzureSASTTL,
		log:        logger,
	}, nil
}

func (a *AzureBlob) blobClient(key string) *blob.Client {
	return a.client.ServiceClient().NewContainerClient(a.container).NewBlobClient(key)
}

func (a *AzureBlob) Store(ctx context.Context, content io.Reader, size int64, title, originalFilename, contentType string) (key string, err error) {
	defer func(start time.Time) { observe("azblob", "store", start, err) }(time.Now())

	if size <= 0 {
		return "", ErrEmptyContent
	}

	key = keyFolder + storagekey.New(title, originalFilename)

	_, err = a.client.UploadStream(ctx, a.container, key, content, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", ErrUnavailable, key, err)
	}

	a.log.Debug().
		Str("key", key).
		Int64("bytes", size).
		Str("content_type", contentType).
		Msg("blob stored in azure container")

	return key, nil
}

func (a *AzureBlob) Open(ctx context.Context, key string) (res Resource, err error) {
	defer func(start time.Time) { observe("azblob", "open", start, err) }(time.Now())

	props, err := a.blobClient(key).GetProperties(ctx, nil)
	if err != nil {
		if isAzureNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: properties %s: %v", ErrUnavailable, key, err)
	}

	var length int64
	if props.ContentLength != nil {
		length = *props.ContentLength
	}

	return &azureResource{backend: a, key: key, length: length}, nil
}

// GetURL checks existence first so a deleted blob surfaces as not-found
// rather than a signing failure, then appends a read-only SAS token.
func (a *AzureBlob) GetURL(ctx context.Context, key string) (string, error) {
	client := a.blobClient(key)
	if _, err := client.GetProperties(ctx, nil); err != nil {
		if isAzureNotFound(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return "", fmt.Errorf("%w: properties %s: %v", ErrUnavailable, key, err)
	}

	permissions := sas.BlobPermissions{Read: true}
	values := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		ExpiryTime:    time.Now().UTC().Add(a.ttl),
		Permissions:   permissions.String(),
		ContainerName: a.container,
		BlobName:      key,
	}

	query, err := values.SignWithSharedKey(a.credential)
	if err != nil {
		return "", fmt.Errorf("%w: sas for %s: %v", ErrSigning, key, err)
	}
	return client.URL() + "?" + query.Encode(), nil
}

func (a *AzureBlob) Delete(ctx context.Context, key string) (removed bool, err error) {
	defer func(start time.Time) { observe("azblob", "delete", start, err) }(time.Now())

	if _, err := a.blobClient(key).Delete(ctx, nil); err != nil {
		if isAzureNotFound(err) {
			return true, nil
		}
		return false, fmt.Errorf("%w: delete %s: %v", ErrUnavailable, key, err)
	}
	return true, nil
}

// Health checks that the container is reachable.
func (a *AzureBlob) Health(ctx context.Context) error {
	_, err := a.client.ServiceClient().NewContainerClient(a.container).GetProperties(ctx, nil)
	return err
}

type azureResource struct {
	backend *AzureBlob
	key     string
	length  int64
}

func (r *azureResource) Length() int64 {
	return r.length
}

func (r *azureResource) ReadRange(ctx context.Context, start, end int64) (io.ReadCloser, error) {
	resp, err := r.backend.blobClient(r.key).DownloadStream(ctx, &blob.DownloadStreamOptions{
		Range: blob.HTTPRange{Offset: start, Count: end - start + 1},
	})
	if err != nil {
		if isAzureNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, r.key)
		}
		return nil, fmt.Errorf("%w: download %s: %v", ErrUnavailable, r.key, err)
	}
	return resp.Body, nil
}

func (r *azureResource) Close() error {
	return nil
}

func isAzureNotFound(err error) bool {
	return bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound)
}
