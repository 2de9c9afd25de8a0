package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/packzen/packzen-client/internal/di"
	"github.com/packzen/packzen-client/internal/domain"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the trip's packing list",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *di.Session) error {
			printList(s)
			return nil
		})
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream the packing list, re-printing on every change",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *di.Session) error {
			printList(s)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			for {
				select {
				case <-s.Engine.Store().Changed():
					printList(s)
				case <-quit:
					return nil
				}
			}
		})
	},
}

var (
	addQuantity  int
	addCategory  string
	addBag       string
	addContainer bool
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an item to the trip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *di.Session) error {
			input := domain.NewItemInput{
				Name:        args[0],
				Quantity:    addQuantity,
				IsContainer: addContainer,
			}
			if addCategory != "" {
				input.Category = domain.Ptr(addCategory)
			}
			if addBag != "" {
				input.BagID = domain.Ptr(addBag)
			}

			item, err := s.Engine.AddItem(ctx, input)
			if err != nil {
				return err
			}
			fmt.Printf("Added %s (%s)\n", item.Name, item.ID)
			return nil
		})
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <item-id>",
	Short: "Toggle an item's packed state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *di.Session) error {
			res, err := s.Engine.TogglePacked(ctx, args[0])
			if err != nil {
				return err
			}
			if !res.Committed() {
				return res.Err
			}
			printList(s)
			return nil
		})
	},
}

var skipCmd = &cobra.Command{
	Use:   "skip <item-id>",
	Short: "Toggle an item's skipped state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *di.Session) error {
			res, err := s.Engine.ToggleSkipped(ctx, args[0])
			if err != nil {
				return err
			}
			if !res.Committed() {
				return res.Err
			}
			return nil
		})
	},
}

var (
	moveBag       string
	moveContainer string
	moveUnassign  bool
)

var moveCmd = &cobra.Command{
	Use:   "move <item-id>",
	Short: "Move an item to a bag, into a container, or to unassigned",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		set := 0
		for _, on := range []bool{moveBag != "", moveContainer != "", moveUnassign} {
			if on {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("specify exactly one of --bag, --container, --unassign")
		}

		return withSession(func(ctx context.Context, s *di.Session) error {
			var err error
			switch {
			case moveBag != "":
				_, err = s.Engine.MoveToBag(ctx, args[0], moveBag)
			case moveContainer != "":
				_, err = s.Engine.MoveToContainer(ctx, args[0], moveContainer)
			default:
				_, err = s.Engine.ClearPlacement(ctx, args[0])
			}
			return err
		})
	},
}

var (
	deleteKeepItems bool
	deleteAll       bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <item-id>",
	Short: "Delete an item; populated containers need --keep-items or --all",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if deleteKeepItems && deleteAll {
			return fmt.Errorf("--keep-items and --all are mutually exclusive")
		}

		return withSession(func(ctx context.Context, s *di.Session) error {
			plan, err := s.Engine.PlanDelete(args[0])
			if err != nil {
				return err
			}

			if plan.Mode == domain.NeedsChoice {
				if !deleteKeepItems && !deleteAll {
					return fmt.Errorf("%q contains %d items: pass --keep-items to move them out or --all to delete %d items",
						plan.Item.Name, len(plan.Contained), plan.TotalCount())
				}
				choice := domain.KeepItems
				if deleteAll {
					choice = domain.DeleteAll
				}
				return s.Engine.ExecuteDelete(ctx, plan, choice)
			}

			return s.Engine.ExecuteDelete(ctx, plan, domain.KeepItems)
		})
	},
}

var (
	batchIDs       string
	batchBag       string
	batchContainer string
	batchCategory  string
	batchSkip      bool
	batchUnskip    bool
	batchDelete    bool
)

var batchCmd = &cobra.Command{
	Use:   "batch --ids a,b,c",
	Short: "Apply one change to several items as an all-or-nothing unit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := strings.Split(batchIDs, ",")
		if batchIDs == "" || len(ids) == 0 {
			return fmt.Errorf("--ids is required")
		}

		return withSession(func(ctx context.Context, s *di.Session) error {
			for _, id := range ids {
				s.Engine.Selection().Toggle(strings.TrimSpace(id))
			}

			var err error
			switch {
			case batchBag != "":
				_, err = s.Engine.BatchAssignBag(ctx, batchBag)
			case batchContainer != "":
				_, err = s.Engine.BatchAssignContainer(ctx, batchContainer)
			case batchCategory != "":
				_, err = s.Engine.BatchRecategorize(ctx, domain.Ptr(batchCategory))
			case batchSkip:
				_, err = s.Engine.BatchSetSkipped(ctx, true)
			case batchUnskip:
				_, err = s.Engine.BatchSetSkipped(ctx, false)
			case batchDelete:
				_, err = s.Engine.BatchDelete(ctx)
			default:
				return fmt.Errorf("specify one of --bag, --container, --category, --skip, --unskip, --delete")
			}
			if err != nil {
				return err
			}
			printList(s)
			return nil
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a silent refresh and print the reconciled list",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(func(ctx context.Context, s *di.Session) error {
			if err := s.Engine.SilentRefresh(ctx); err != nil {
				return err
			}
			printList(s)
			return nil
		})
	},
}

func init() {
	addCmd.Flags().IntVarP(&addQuantity, "qty", "q", 1, "quantity")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", "", "category label")
	addCmd.Flags().StringVarP(&addBag, "bag", "b", "", "bag id to place the item in")
	addCmd.Flags().BoolVar(&addContainer, "container", false, "create the item as a container")

	moveCmd.Flags().StringVarP(&moveBag, "bag", "b", "", "destination bag id")
	moveCmd.Flags().StringVarP(&moveContainer, "container", "c", "", "destination container item id")
	moveCmd.Flags().BoolVarP(&moveUnassign, "unassign", "u", false, "move to unassigned")

	deleteCmd.Flags().BoolVar(&deleteKeepItems, "keep-items", false, "move contained items out before deleting the container")
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "delete the container and everything inside it")

	batchCmd.Flags().StringVar(&batchIDs, "ids", "", "comma-separated item ids")
	batchCmd.Flags().StringVarP(&batchBag, "bag", "b", "", "assign all to this bag")
	batchCmd.Flags().StringVarP(&batchContainer, "container", "c", "", "place all inside this container")
	batchCmd.Flags().StringVar(&batchCategory, "category", "", "set this category on all")
	batchCmd.Flags().BoolVar(&batchSkip, "skip", false, "mark all skipped")
	batchCmd.Flags().BoolVar(&batchUnskip, "unskip", false, "unmark skipped on all")
	batchCmd.Flags().BoolVar(&batchDelete, "delete", false, "delete all selected items")
}
