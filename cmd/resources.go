package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/remedialportal/console/pkg/portal"
	"github.com/remedialportal/console/pkg/portal/hydra"
	"github.com/spf13/cobra"
)

// resourceOps erases the Resource type parameter so commands can dispatch
// on the resource name given on the command line.
type resourceOps struct {
	list   func(ctx context.Context, opts portal.ListOptions) (any, *hydra.Collection, error)
	get    func(ctx context.Context, id int) (any, error)
	create func(ctx context.Context, payload any) (any, error)
	update func(ctx context.Context, id int, payload any) (any, error)
	del    func(ctx context.Context, id int) error
}

func ops[T any](r *portal.Resource[T]) resourceOps {
	return resourceOps{
		list: func(ctx context.Context, opts portal.ListOptions) (any, *hydra.Collection, error) {
			items, collection, err := r.List(ctx, opts)
			return items, collection, err
		},
		get: func(ctx context.Context, id int) (any, error) {
			return r.Get(ctx, id)
		},
		create: func(ctx context.Context, payload any) (any, error) {
			return r.Create(ctx, payload)
		},
		update: func(ctx context.Context, id int, payload any) (any, error) {
			return r.Update(ctx, id, payload)
		},
		del: func(ctx context.Context, id int) error {
			return r.Delete(ctx, id)
		},
	}
}

func resolveResource(c *portal.Client, name string) (resourceOps, error) {
	switch strings.ToLower(name) {
	case "applicants":
		return ops(c.Applicants), nil
	case "applications":
		return ops(c.Applications), nil
	case "payments":
		return ops(c.Payments), nil
	case "users":
		return ops(c.Users), nil
	case "states":
		return ops(c.States), nil
	case "lgas":
		return ops(c.Lgas), nil
	case "programs":
		return ops(c.Programs), nil
	case "document-types", "document_types":
		return ops(c.DocumentTypes), nil
	case "application-documents", "application_documents":
		return ops(c.ApplicationDocuments), nil
	case "o-level-results", "o_level_results":
		return ops(c.OLevelResults), nil
	default:
		return resourceOps{}, fmt.Errorf("unknown resource %q", name)
	}
}

// validateStatusFilter rejects status values the backend would silently
// ignore, for the resources whose status vocabulary is known.
func validateStatusFilter(resource string, filters url.Values) error {
	status := filters.Get("status")
	if status == "" {
		return nil
	}
	switch strings.ToLower(resource) {
	case "applications":
		if !portal.ValidApplicationStatus(status) {
			return fmt.Errorf("unknown application status %q (valid: %s)",
				status, strings.Join(portal.ApplicationStatuses, ", "))
		}
	case "payments":
		if !portal.ValidPaymentStatus(status) {
			return fmt.Errorf("unknown payment status %q (valid: %s)",
				status, strings.Join(portal.PaymentStatuses, ", "))
		}
	}
	return nil
}

var (
	listPage    int
	listPerPage int
	listFilters []string
	writeData   string
)

var listCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List a resource collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		res, err := resolveResource(client, args[0])
		if err != nil {
			return err
		}

		filters := url.Values{}
		for _, f := range listFilters {
			k, v, found := strings.Cut(f, "=")
			if !found {
				return fmt.Errorf("invalid filter %q, expected key=value", f)
			}
			filters.Add(k, v)
		}
		if err := validateStatusFilter(args[0], filters); err != nil {
			return err
		}

		items, collection, err := res.list(cmd.Context(), portal.ListOptions{
			Page:         listPage,
			ItemsPerPage: listPerPage,
			Filters:      filters,
		})
		if err != nil {
			return err
		}

		if err := printJSON(items); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "total: %d\n", collection.TotalItems)
		if collection.View != nil && collection.View.Next != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "next: %s\n", collection.View.Next)
		}
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <resource> <id>",
	Short: "Fetch a single resource by id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		res, err := resolveResource(client, args[0])
		if err != nil {
			return err
		}

		item, err := res.get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(item)
	},
}

var createCmd = &cobra.Command{
	Use:   "create <resource>",
	Short: "Create a resource from a JSON payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := readPayload(writeData)
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		res, err := resolveResource(client, args[0])
		if err != nil {
			return err
		}

		item, err := res.create(cmd.Context(), payload)
		if err != nil {
			return err
		}
		return printJSON(item)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <resource> <id>",
	Short: "Partially update a resource (merge-patch)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}

		payload, err := readPayload(writeData)
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		res, err := resolveResource(client, args[0])
		if err != nil {
			return err
		}

		item, err := res.update(cmd.Context(), id, payload)
		if err != nil {
			return err
		}
		return printJSON(item)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete a resource by id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[1])
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		res, err := resolveResource(client, args[0])
		if err != nil {
			return err
		}

		if err := res.del(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deleted")
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&listPage, "page", 0, "page number")
	listCmd.Flags().IntVar(&listPerPage, "items-per-page", 0, "items per page")
	listCmd.Flags().StringArrayVar(&listFilters, "filter", nil, "filter as key=value (repeatable)")

	createCmd.Flags().StringVar(&writeData, "data", "-", "JSON payload, or - for stdin")
	updateCmd.Flags().StringVar(&writeData, "data", "-", "JSON payload, or - for stdin")

	rootCmd.AddCommand(listCmd, getCmd, createCmd, updateCmd, deleteCmd)
}
