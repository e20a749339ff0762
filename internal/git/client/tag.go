package client

import (
	"context"
	"fmt"
	"strings"
)

// Tags lists tags with the commit each one points at.
func (c *Repo) Tags(ctx context.Context) ([]Tag, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return resolveTags(c.root)
}

// CreateTag tags HEAD; a non-empty message makes it annotated.
func (c *Repo) CreateTag(ctx context.Context, name, message string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: tag name is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(message) != "" {
		_, err := c.run(ctx, "tag", "-a", name, "-m", message)
		return err
	}
	_, err := c.run(ctx, "tag", name)
	return err
}

func (c *Repo) DeleteTag(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: tag name is required", ErrInvalidArgument)
	}
	_, err := c.run(ctx, "tag", "-d", name)
	return err
}
