package shell

// The wrappers turn the interactive picker's "cd|PATH" / "edit|PATH"
// output into a directory change in the calling shell, which a child
// process cannot do by itself. Every other subcommand passes through.

const posixFunctions = `__wt_cd() {
    if [ -d "$1" ]; then
        builtin cd "$1" || return 1
    else
        echo "wt: directory not found: $1" >&2
        return 1
    fi
}

__wt_edit() {
    __wt_cd "$1" || return 1
    local editor
    editor="$(command wt config editor 2>/dev/null)"
    eval "${editor:-${EDITOR:-vim}} ."
}

wt() {
    if [ $# -eq 0 ] || [ "$1" = "interactive" ] || [ "$1" = "-a" ] || [ "$1" = "--all" ]; then
        local output exit_code
        output="$(command wt "$@")"
        exit_code=$?
        if [ $exit_code -ne 0 ]; then
            return $exit_code
        fi

        case "$output" in
            cd\|*)   __wt_cd "${output#cd|}" ;;
            edit\|*) __wt_edit "${output#edit|}" ;;
            *)       [ -n "$output" ] && printf '%s\n' "$output" ;;
        esac
    else
        command wt "$@"
    fi
}
`

const zshScript = "# wt - git worktree manager shell integration (zsh)\n\n" + posixFunctions

const bashScript = "# wt - git worktree manager shell integration (bash)\n\n" + posixFunctions

const fishScript = `# wt - git worktree manager shell integration (fish)

function __wt_cd
    if test -d $argv[1]
        builtin cd $argv[1]
    else
        echo "wt: directory not found: $argv[1]" >&2
        return 1
    end
end

function __wt_edit
    __wt_cd $argv[1]; or return 1
    set -l editor (command wt config editor 2>/dev/null)
    if test -z "$editor"
        set editor (set -q EDITOR; and echo $EDITOR; or echo vim)
    end
    eval $editor .
end

function wt
    if test (count $argv) -eq 0; or contains -- "$argv[1]" interactive -a --all
        set -l output (command wt $argv)
        set -l exit_code $status
        if test $exit_code -ne 0
            return $exit_code
        end

        switch "$output"
            case 'cd|*'
                __wt_cd (string replace -r '^cd\|' '' -- $output)
            case 'edit|*'
                __wt_edit (string replace -r '^edit\|' '' -- $output)
            case '*'
                test -n "$output"; and printf '%s\n' $output
        end
    else
        command wt $argv
    end
end
`
