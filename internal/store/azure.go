package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureBucket is a blob storage container addressed with a shared key.
type AzureBucket struct {
	client    *azblob.Client
	container string
}

func NewAzureBucket(accountName, accountKey, container string) (*AzureBucket, error) {
	if accountName == "" || accountKey == "" || container == "" {
		return nil, fmt.Errorf("azure storage requires an account name, an account key and a container")
	}
	cred, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net/", accountName),
		cred,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}
	return &AzureBucket{client: client, container: container}, nil
}

func (a *AzureBucket) Put(ctx context.Context, name string, data []byte) error {
	_, err := a.client.UploadBuffer(ctx, a.container, name, data, nil)
	if err != nil {
		return fmt.Errorf("azure upload %s: %w", name, err)
	}
	return nil
}

func (a *AzureBucket) Get(ctx context.Context, name string) ([]byte, error) {
	res, err := a.client.DownloadStream(ctx, a.container, name, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("azure download %s: %w", name, err)
	}
	defer res.Body.Close()

	var buffer bytes.Buffer
	_, err = io.Copy(&buffer, res.Body)
	if err != nil {
		return nil, fmt.Errorf("azure read %s: %w", name, err)
	}
	return buffer.Bytes(), nil
}
